package signature

import (
	"encoding/base64"
	"testing"
)

const testSecret = "channel-secret"

var testBody = []byte(`{"destination":"Uxxx","events":[{"type":"join","source":{"type":"group","groupId":"G1"}}]}`)

func TestVerify_Valid(t *testing.T) {
	sig := Compute(testBody, testSecret)
	if !Verify(testBody, sig, testSecret) {
		t.Fatal("expected valid signature to verify")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	sig := Compute(testBody, testSecret)
	if Verify(testBody, sig, "other-secret") {
		t.Error("expected signature computed with another secret to fail")
	}
}

func TestVerify_MissingHeader(t *testing.T) {
	if Verify(testBody, "", testSecret) {
		t.Error("expected empty header to fail")
	}
	if Verify(testBody, "   ", testSecret) {
		t.Error("expected blank header to fail")
	}
}

func TestVerify_EmptySecret(t *testing.T) {
	sig := Compute(testBody, "")
	if Verify(testBody, sig, "") {
		t.Error("expected empty secret to never verify")
	}
}

func TestVerify_MalformedHeader(t *testing.T) {
	if Verify(testBody, "not base64 !!!", testSecret) {
		t.Error("expected malformed base64 to fail")
	}
}

func TestVerify_TruncatedSignature(t *testing.T) {
	raw, _ := base64.StdEncoding.DecodeString(Compute(testBody, testSecret))
	short := base64.StdEncoding.EncodeToString(raw[:len(raw)-1])
	if Verify(testBody, short, testSecret) {
		t.Error("expected truncated digest to fail")
	}
}

func TestVerify_BodyBitFlips(t *testing.T) {
	sig := Compute(testBody, testSecret)
	for i := range testBody {
		for bit := 0; bit < 8; bit++ {
			mutated := append([]byte(nil), testBody...)
			mutated[i] ^= 1 << bit
			if Verify(mutated, sig, testSecret) {
				t.Fatalf("body flip at byte %d bit %d still verified", i, bit)
			}
		}
	}
}

func TestVerify_SignatureBitFlips(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString(Compute(testBody, testSecret))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range raw {
		for bit := 0; bit < 8; bit++ {
			mutated := append([]byte(nil), raw...)
			mutated[i] ^= 1 << bit
			header := base64.StdEncoding.EncodeToString(mutated)
			if Verify(testBody, header, testSecret) {
				t.Fatalf("signature flip at byte %d bit %d still verified", i, bit)
			}
		}
	}
}
