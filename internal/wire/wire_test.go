package wire

import (
	"bytes"
	"testing"
	"time"
)

func TestPageRoundTrip(t *testing.T) {
	fetchedAt := time.Now().Truncate(time.Millisecond)
	payload := []byte("<html>hello</html>")

	b := EncodePage(fetchedAt, payload)
	gotAt, gotPayload, err := DecodePage(b)
	if err != nil {
		t.Fatalf("DecodePage: %v", err)
	}
	if !gotAt.Equal(fetchedAt) {
		t.Fatalf("fetchedAt = %v, want %v", gotAt, fetchedAt)
	}
	if !bytes.Equal(gotPayload, payload) {
		t.Fatalf("payload = %q, want %q", gotPayload, payload)
	}
}

func TestPageEmptyPayload(t *testing.T) {
	b := EncodePage(time.Now(), nil)
	_, payload, err := DecodePage(b)
	if err != nil {
		t.Fatalf("DecodePage: %v", err)
	}
	if len(payload) != 0 {
		t.Fatalf("payload = %q, want empty", payload)
	}
}

func TestDecodeRejectsCorrupt(t *testing.T) {
	good := EncodePage(time.Now(), []byte("payload"))

	cases := map[string][]byte{
		"empty":             {},
		"short":             good[:8],
		"bad magic":         append([]byte("XXXX"), good[4:]...),
		"bad version":       append(append([]byte{}, good[:4]...), append([]byte{99}, good[5:]...)...),
		"truncated body":    good[:len(good)-3],
		"foreign plaintext": []byte("just some text another writer left here"),
	}
	for name, b := range cases {
		if _, _, err := DecodePage(b); err != ErrCorrupt {
			t.Errorf("%s: DecodePage err = %v, want ErrCorrupt", name, err)
		}
	}
}

func TestDecodeRejectsOversizedLength(t *testing.T) {
	b := EncodePage(time.Now(), []byte("abc"))
	// inflate the declared payload length past the buffer
	b[4+1+8+3] = 0xFF
	if _, _, err := DecodePage(b); err != ErrCorrupt {
		t.Fatalf("DecodePage err = %v, want ErrCorrupt", err)
	}
}
