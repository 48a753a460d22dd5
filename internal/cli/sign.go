package cli

import (
	"encoding/hex"
	"fmt"

	ethCrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tcfw/starchain/pkg/cryptography"
)

var (
	signCmd = &cobra.Command{
		Use:   "sign <hex-private-key> <message>",
		RunE:  runSign,
		Short: "sign a validation challenge locally, standing in for a wallet",
		Args:  cobra.ExactArgs(2),
	}
)

func runSign(cmd *cobra.Command, args []string) error {
	priv, err := ethCrypto.HexToECDSA(args[0])
	if err != nil {
		return errors.Wrap(err, "parsing private key")
	}

	sig, err := cryptography.SignChallenge(priv, args[1])
	if err != nil {
		return err
	}

	fmt.Printf("address:   %s\n", cryptography.Address(&priv.PublicKey))
	fmt.Printf("signature: %s\n", hex.EncodeToString(sig))

	return nil
}
