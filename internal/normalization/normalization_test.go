package normalization

import "testing"

func TestParseInputString(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  hello   world ", "hello world"},
		{"\tone\n two  three ", "one two three"},
		{"   ", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ParseInputString(tc.in); got != tc.want {
			t.Fatalf("ParseInputString(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUsername(t *testing.T) {
	if got := Username("  Striker9 "); got != "striker9" {
		t.Fatalf("Username: got %q", got)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Malmö FF is looking for Striker", "malmo-ff-is-looking-for-striker"},
		{"Västerås SK", "vasteras-sk"},
		{"  -- trailing -- ", "trailing"},
		{"Örebro!!", "orebro"},
		{"Team 07", "team-07"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Fatalf("Slugify(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}
