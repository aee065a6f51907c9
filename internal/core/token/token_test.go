package token

import "testing"

func TestEquality(t *testing.T) {
	a := New("sepolia", "0x1", "wETH")
	b := New("sepolia", "0x1", "wETH")
	c := New("arbitrum-sepolia", "0x1", "wETH")

	if a != b {
		t.Fatal("identical TokenIDs must compare equal")
	}
	if a == c {
		t.Fatal("TokenIDs on different chains must not alias")
	}
}

func TestLessTotalOrder(t *testing.T) {
	a := New("a", "0x1", "AAA")
	b := New("a", "0x1", "BBB")
	c := New("a", "0x2", "AAA")
	d := New("b", "0x1", "AAA")

	ordered := []TokenID{a, b, c, d}
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if !ordered[i].Less(ordered[j]) {
				t.Fatalf("%v should sort before %v", ordered[i], ordered[j])
			}
			if ordered[j].Less(ordered[i]) {
				t.Fatalf("%v should not sort before %v", ordered[j], ordered[i])
			}
		}
	}
	if a.Less(a) {
		t.Fatal("Less must be irreflexive")
	}
}

func TestKey(t *testing.T) {
	tok := New("sepolia", "0xabc", "wUSDC")
	if tok.Key() != "sepolia:0xabc:wUSDC" {
		t.Fatalf("Key = %q", tok.Key())
	}
}
