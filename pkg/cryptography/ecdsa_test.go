package cryptography

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignVerifyChallenge(t *testing.T) {
	priv, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}

	addr := Address(&priv.PublicKey)
	msg := addr + ":1541438400000:starRegistry"

	sig, err := SignChallenge(priv, msg)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := VerifyChallenge(addr, msg, sig)
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, ok)
}

func TestVerifyChallengeWalletV(t *testing.T) {
	priv, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}

	addr := Address(&priv.PublicKey)
	msg := addr + ":1541438400000:starRegistry"

	sig, err := SignChallenge(priv, msg)
	if err != nil {
		t.Fatal(err)
	}

	// wallets report the recovery id as 27/28
	sig[64] += 27

	ok, err := VerifyChallenge(addr, msg, sig)
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, ok)
}

func TestVerifyChallengeWrongKey(t *testing.T) {
	priv, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}

	other, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}

	addr := Address(&priv.PublicKey)
	msg := addr + ":1541438400000:starRegistry"

	sig, err := SignChallenge(other, msg)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := VerifyChallenge(addr, msg, sig)
	if err != nil {
		t.Fatal(err)
	}
	assert.False(t, ok)
}

func TestVerifyChallengeBadLength(t *testing.T) {
	_, err := VerifyChallenge("0xabc", "msg", []byte{1, 2, 3})
	assert.Error(t, err)
}
