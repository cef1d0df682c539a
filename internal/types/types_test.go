package types

import "testing"

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"both roles", Config{Mappers: 2, Reducers: 3, Manifest: "test.txt"}, false},
		{"no reducers", Config{Mappers: 1, Manifest: "test.txt"}, false},
		{"no mappers", Config{Reducers: 1, Manifest: "test.txt"}, false},
		{"empty pool", Config{Manifest: "test.txt"}, true},
		{"negative mappers", Config{Mappers: -1, Reducers: 2, Manifest: "test.txt"}, true},
		{"negative reducers", Config{Mappers: 1, Reducers: -2, Manifest: "test.txt"}, true},
		{"no manifest", Config{Mappers: 1, Reducers: 1}, true},
	}

	for _, tc := range cases {
		err := tc.cfg.Validate()
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: Validate() error = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestRunRecordSameCounts(t *testing.T) {
	a := RunRecord{Counts: map[int]int{2: 4, 3: 2}}
	b := RunRecord{Counts: map[int]int{2: 4, 3: 2}}
	c := RunRecord{Counts: map[int]int{2: 4, 3: 1}}
	d := RunRecord{Counts: map[int]int{2: 4}}

	if !a.SameCounts(b) {
		t.Fatalf("identical counts reported as different")
	}
	if a.SameCounts(c) || a.SameCounts(d) {
		t.Fatalf("different counts reported as identical")
	}

	r := RunRecord{Manifest: "test.txt", Mappers: 2, Reducers: 3}
	if r.Key() != "test.txt|2|3" {
		t.Fatalf("unexpected key %q", r.Key())
	}
}
