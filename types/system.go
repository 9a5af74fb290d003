package types

import (
	"fmt"

	"github.com/0xNineteen/sol-lightnode/crypto"
	"github.com/0xNineteen/sol-lightnode/crypto/ed25519"
	"github.com/0xNineteen/sol-lightnode/wire"
)

// System program instruction discriminants (u32, little endian).
const sysInstructionTransfer = 2

// NewTransferTransaction builds and signs a minimal lamport transfer
// from the key's account to dest. It is the probe transaction the
// verifier plants in a slot and then proves inclusion for.
func NewTransferTransaction(from ed25519.PrivKey, dest crypto.PubKey, lamports uint64, recentBlockhash crypto.Hash) (*Transaction, error) {
	data := wire.NewEncoder()
	data.WriteU32(sysInstructionTransfer)
	data.WriteU64(lamports)

	msg := Message{
		Version: MessageVersionLegacy,
		Header: MessageHeader{
			NumRequiredSignatures:       1,
			NumReadonlyUnsignedAccounts: 1,
		},
		AccountKeys:     []crypto.PubKey{from.PubKey(), dest, SystemProgramID},
		RecentBlockhash: recentBlockhash,
		Instructions: []CompiledInstruction{{
			ProgramIDIndex: 2,
			Accounts:       []uint8{0, 1},
			Data:           data.Bytes(),
		}},
	}

	sig, err := from.Sign(msg.Serialize())
	if err != nil {
		return nil, fmt.Errorf("sign transfer: %w", err)
	}
	return &Transaction{
		Signatures: []crypto.Signature{sig},
		Message:    msg,
	}, nil
}
