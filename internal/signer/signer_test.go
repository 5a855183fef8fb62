package signer

import "testing"

// Golden vector carried over from the upstream client's own unit test:
// hash_kv("key", "value") must equal this literal hex pair.
func TestHashKVGoldenVector(t *testing.T) {
	got := hashKV("key", "value")
	want := "2c70e12b7a0646f92279f427c7b38e7334d8e5389cff167a1dc30e73f826b683_" +
		"ec2c83edecb60304d154ebdb85bdfaf61a92bd142e71c4f7b25a15b9cb5f3c0ae301cfb3569cf240e4470031385348bc296d8d99d09e06b26f09591a97527296"

	if got != want {
		t.Fatalf("hashKV(\"key\", \"value\") = %s, want %s", got, want)
	}
}

func TestWebSignDeterministic(t *testing.T) {
	params := map[string]string{"episode_id": "123", "point": "50"}

	a := WebSign(params, "1990-01-01", "1700000000")
	b := WebSign(params, "1990-01-01", "1700000000")

	if a != b {
		t.Fatalf("WebSign is not deterministic: %s != %s", a, b)
	}
	if len(a) != 128 {
		t.Fatalf("WebSign output should be a hex SHA512 digest (128 chars), got %d", len(a))
	}
}

func TestWebSignChangesWithParams(t *testing.T) {
	a := WebSign(map[string]string{"episode_id": "123"}, "1990-01-01", "1700000000")
	b := WebSign(map[string]string{"episode_id": "124"}, "1990-01-01", "1700000000")

	if a == b {
		t.Fatal("WebSign should differ when a query parameter changes")
	}
}

func TestMobileSignDeterministic(t *testing.T) {
	params := map[string]string{"episode_id": "123"}

	a := MobileSign(params, "user-token-abc")
	b := MobileSign(params, "user-token-abc")

	if a != b {
		t.Fatalf("MobileSign is not deterministic: %s != %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("MobileSign output should be a hex SHA256 digest (64 chars), got %d", len(a))
	}
}

func TestMobileSignIgnoresCallerSuppliedHashKey(t *testing.T) {
	// A caller-supplied "hash_key" entry must be overwritten by userToken,
	// not merged alongside it, since the wire format has only one slot for it.
	withBogusKey := map[string]string{"hash_key": "bogus", "episode_id": "123"}
	without := map[string]string{"episode_id": "123"}

	a := MobileSign(withBogusKey, "user-token-abc")
	b := MobileSign(without, "user-token-abc")

	if a != b {
		t.Fatal("MobileSign should overwrite any caller-supplied hash_key with userToken")
	}
}
