package types

import (
	"github.com/0xNineteen/sol-lightnode/crypto"
)

// Well-known program ids. Instruction payloads are only decoded for
// instructions whose resolved program id matches one of these.
var (
	// VoteProgramID is the native vote program.
	VoteProgramID = crypto.MustPubKeyFromString("Vote111111111111111111111111111111111111111")

	// SystemProgramID is the native system program.
	SystemProgramID = crypto.MustPubKeyFromString("11111111111111111111111111111111")
)

// MaxTransactionSize caps the serialized size of a transaction
// accepted by the decoder. Matches the chain's packet size limit.
const MaxTransactionSize = 1232
