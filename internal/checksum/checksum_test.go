package checksum

import "testing"

func TestSum(t *testing.T) {
	// sha256("")
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %s", got)
	}
}

func TestShort(t *testing.T) {
	if got := Short("", 8); got != "e3b0c44298fc1c14" {
		t.Errorf("Short = %s", got)
	}
	if got := Short("x", 0); len(got) != 64 {
		t.Errorf("n=0 should return the full digest, got %d chars", len(got))
	}
	if Short("a", 8) == Short("b", 8) {
		t.Error("different inputs should differ")
	}
}

func TestJSON_StableForMaps(t *testing.T) {
	_, a, err := JSON(map[string]int{"a": 1, "b": 2})
	if err != nil {
		t.Fatal(err)
	}
	_, b, _ := JSON(map[string]int{"b": 2, "a": 1})
	if a != b {
		t.Error("map key order should not change the digest")
	}
}

func TestJSON_Error(t *testing.T) {
	if _, _, err := JSON(make(chan int)); err == nil {
		t.Fatal("expected encode error")
	}
}
