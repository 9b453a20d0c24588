package checksum

import "testing"

func TestSHA1HasherDeterministic(t *testing.T) {
	h := SHA1Hasher{}
	sum1, err := SumBytes(h, []byte("preprocessed text"))
	if err != nil {
		t.Fatal(err)
	}
	sum2, err := SumBytes(h, []byte("preprocessed text"))
	if err != nil {
		t.Fatal(err)
	}
	if sum1 != sum2 {
		t.Fatalf("not deterministic: %q vs %q", sum1, sum2)
	}
	if sum1 != "42d56605d76260883e7766914db38b287c1124f8" {
		t.Fatalf("unexpected digest: %q", sum1)
	}
}

func TestSHA1HasherDiffersOnDifferentInput(t *testing.T) {
	h := SHA1Hasher{}
	sum1, _ := SumBytes(h, []byte("a"))
	sum2, _ := SumBytes(h, []byte("b"))
	if sum1 == sum2 {
		t.Fatal("expected different digests")
	}
}
