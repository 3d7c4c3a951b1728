package sqlstore

import "testing"

func TestNormalizeDSN(t *testing.T) {
	cases := map[string]string{
		"":                                   "",
		"postgres://u:p@h:5432/db":           "postgres://u:p@h:5432/db",
		`"host=db  user=app dbname=portail"`: "host=db user=app dbname=portail sslmode=disable",
		"host=db user=app sslmode=require":   "host=db user=app sslmode=require",
		"not a dsn":                          "not a dsn",
	}
	for in, want := range cases {
		if got := NormalizeDSN(in); got != want {
			t.Errorf("NormalizeDSN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToURLDSN(t *testing.T) {
	got := ToURLDSN("host=db port=5432 user=app password=s3cret dbname=portail sslmode=disable")
	want := "postgres://app:s3cret@db:5432/portail?sslmode=disable"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if got := ToURLDSN("host=db"); got != "host=db" {
		t.Fatalf("incomplete DSN should be returned unchanged, got %q", got)
	}
}

func TestMaskDSN(t *testing.T) {
	if got := MaskDSN("host=db password=s3cret dbname=x"); got != "host=db password=*** dbname=x" {
		t.Fatalf("kv: %q", got)
	}
	if got := MaskDSN("postgres://app:s3cret@db/portail"); got != "postgres://app:%2A%2A%2A@db/portail" {
		t.Fatalf("url: %q", got)
	}
}
