package content

import "testing"

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"story", KindStory, true},
		{" Poem ", KindPoem, true},
		{"limerick", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseKind(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseKind(%q): want=(%q,%v) got=(%q,%v)", tc.in, tc.want, tc.ok, got, ok)
		}
	}
}

func TestSetProvenanceKeepsPositionalPairing(t *testing.T) {
	var g GeneratedContent
	g.SetProvenance(
		[3]string{"a.png", "b.png", "c.png"},
		[3][]string{{"dog"}, nil, {"child", "laughing"}},
	)
	refs := g.ImageRefs()
	labels := g.LabelSets()
	if refs[1] != "b.png" || len(labels[1]) != 0 || labels[1] == nil {
		t.Fatalf("slot 1 not paired as empty set: ref=%q labels=%#v", refs[1], labels[1])
	}
	if refs[2] != "c.png" || len(labels[2]) != 2 || labels[2][1] != "laughing" {
		t.Fatalf("slot 2 mismatch: ref=%q labels=%v", refs[2], labels[2])
	}
}
