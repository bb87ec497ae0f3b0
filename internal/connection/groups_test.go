package connection

import (
	"errors"
	"testing"

	"github.com/rickgao/bmv-data/internal/model"
)

func TestGroups(t *testing.T) {
	tests := []struct {
		env      Environment
		producto model.Group
		wantA    string
		wantB    string
	}{
		{EnvProd, model.Producto18, "239.100.100.18:12121", "239.100.200.18:12122"},
		{EnvProd, model.Producto40, "239.100.100.40:12121", "239.100.200.40:12122"},
		{EnvDRP, model.Producto18, "239.150.100.18:12131", "239.150.200.18:12132"},
		{EnvTest, model.Producto40, "239.200.100.40:12141", "239.200.200.40:12142"},
	}

	for _, tt := range tests {
		feeds, err := Groups(tt.env, tt.producto)
		if err != nil {
			t.Fatalf("Groups(%s, %d) error = %v", tt.env, tt.producto, err)
		}
		if len(feeds) != 2 {
			t.Fatalf("Groups(%s, %d) returned %d feeds, want 2", tt.env, tt.producto, len(feeds))
		}
		if feeds[0].Group != tt.wantA {
			t.Errorf("Groups(%s, %d) A = %s, want %s", tt.env, tt.producto, feeds[0].Group, tt.wantA)
		}
		if feeds[1].Group != tt.wantB {
			t.Errorf("Groups(%s, %d) B = %s, want %s", tt.env, tt.producto, feeds[1].Group, tt.wantB)
		}
	}
}

func TestGroups_Errors(t *testing.T) {
	if _, err := Groups("QA", model.Producto18); !errors.Is(err, ErrUnknownEnvironment) {
		t.Errorf("Groups(QA) error = %v, want ErrUnknownEnvironment", err)
	}
	if _, err := Groups(EnvProd, model.Group(19)); err == nil {
		t.Error("Groups(PROD, 19) error = nil, want error")
	}
}

func TestParseEnvironment(t *testing.T) {
	env, err := ParseEnvironment(" drp ")
	if err != nil {
		t.Fatalf("ParseEnvironment() error = %v", err)
	}
	if env != EnvDRP {
		t.Errorf("ParseEnvironment() = %s, want DRP", env)
	}
	if _, err := ParseEnvironment("staging"); !errors.Is(err, ErrUnknownEnvironment) {
		t.Errorf("ParseEnvironment(staging) error = %v, want ErrUnknownEnvironment", err)
	}
}

func TestSelectFeeds(t *testing.T) {
	feeds, err := SelectFeeds(EnvProd, []model.Group{model.Producto18, model.Producto40}, []string{"a"})
	if err != nil {
		t.Fatalf("SelectFeeds() error = %v", err)
	}

	want := []string{"18A", "40A"}
	if len(feeds) != len(want) {
		t.Fatalf("SelectFeeds() = %v, want names %v", feeds, want)
	}
	for i, f := range feeds {
		if f.Name != want[i] {
			t.Errorf("feeds[%d].Name = %s, want %s", i, f.Name, want[i])
		}
	}

	all, _ := SelectFeeds(EnvTest, []model.Group{model.Producto18}, nil)
	if len(all) != 2 {
		t.Errorf("SelectFeeds() without sides = %d feeds, want 2", len(all))
	}
}
