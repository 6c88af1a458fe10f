package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadClustersFromFile(t *testing.T) {
	yml := `- name: Training Plans & Schedules
  keywords: [plan, schedule, program]
- name: Gear & Equipment
  keywords:
    - shoes
    - gear checklist
`
	path := filepath.Join(t.TempDir(), "clusters.yaml")
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadClustersFromFile(path)
	if err != nil {
		t.Fatalf("LoadClustersFromFile() error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(got))
	}
	if got[0].Name != "Training Plans & Schedules" {
		t.Errorf("expected first cluster Training Plans & Schedules, got %s", got[0].Name)
	}
	if len(got[0].Keywords) != 3 {
		t.Errorf("expected 3 keywords, got %d", len(got[0].Keywords))
	}
	if got[1].Keywords[1] != "gear checklist" {
		t.Errorf("expected multi-word keyword preserved, got %q", got[1].Keywords[1])
	}
}

func TestLoadClustersFromFile_NotFound(t *testing.T) {
	_, err := LoadClustersFromFile("/nonexistent/clusters.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadClustersFromFile_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("- name: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadClustersFromFile(path)
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadClustersFromFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadClustersFromFile(path)
	if err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestLoadClustersFromFile_MissingName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noname.yaml")
	if err := os.WriteFile(path, []byte("- keywords: [plan]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadClustersFromFile(path)
	if err == nil {
		t.Fatal("expected error for cluster without a name")
	}
}

func TestLoadClustersFromFile_MissingKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nokeywords.yaml")
	if err := os.WriteFile(path, []byte("- name: Lonely Cluster\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadClustersFromFile(path)
	if err == nil {
		t.Fatal("expected error for cluster without keywords")
	}
}

// TestLoadClustersFromFile_RealFile loads the actual testdata fixture to
// verify format.
func TestLoadClustersFromFile_RealFile(t *testing.T) {
	path := filepath.Join("..", "..", "testdata", "clusters.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("testdata/clusters.yaml not found, skipping")
	}

	clusters, err := LoadClustersFromFile(path)
	if err != nil {
		t.Fatalf("LoadClustersFromFile() error: %v", err)
	}
	if len(clusters) == 0 {
		t.Error("expected at least one cluster from fixture")
	}
	for _, c := range clusters {
		if len(c.Keywords) == 0 {
			t.Errorf("cluster %q has no keywords", c.Name)
		}
	}
}
