package assets

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// MessageVersion is the only wire version of the asset messages this codec
// produces and accepts.
const MessageVersion uint32 = 1

// Protobuf field numbers of DeckSpawnMessage.
const (
	deckSpawnFieldVersion           = 1
	deckSpawnFieldName              = 2
	deckSpawnFieldNumberOfDecimals  = 3
	deckSpawnFieldIssueMode         = 4
	deckSpawnFieldAssetSpecificData = 5
)

// Protobuf field numbers of CardTransferMessage.
const (
	cardTransferFieldVersion           = 1
	cardTransferFieldAmounts           = 2
	cardTransferFieldNumberOfDecimals  = 3
	cardTransferFieldAssetSpecificData = 4
)

// DeckSpawnMessage is the payload of a deck spawn transaction's null-data
// output.
type DeckSpawnMessage struct {
	Version           uint32
	Name              string
	NumberOfDecimals  uint32
	IssueMode         IssueMode
	AssetSpecificData string
}

// CardTransferMessage is the payload of a card transfer transaction's
// null-data output. Amounts are positional: entry i is received by the
// transaction's output 2+i.
type CardTransferMessage struct {
	Version           uint32
	NumberOfDecimals  uint32
	Amounts           []uint64
	AssetSpecificData string
}

// Serialize encodes the message in protobuf wire format.
func (msg *DeckSpawnMessage) Serialize() []byte {
	var b []byte
	b = protowire.AppendTag(b, deckSpawnFieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(msg.Version))
	b = protowire.AppendTag(b, deckSpawnFieldName, protowire.BytesType)
	b = protowire.AppendString(b, msg.Name)
	b = protowire.AppendTag(b, deckSpawnFieldNumberOfDecimals, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(msg.NumberOfDecimals))
	b = protowire.AppendTag(b, deckSpawnFieldIssueMode, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(msg.IssueMode))
	if msg.AssetSpecificData != "" {
		b = protowire.AppendTag(b, deckSpawnFieldAssetSpecificData, protowire.BytesType)
		b = protowire.AppendString(b, msg.AssetSpecificData)
	}
	return b
}

// DeserializeDeckSpawnMessage decodes a DeckSpawnMessage from protobuf wire
// format.
func DeserializeDeckSpawnMessage(data []byte) (*DeckSpawnMessage, error) {
	msg := &DeckSpawnMessage{}
	for len(data) > 0 {
		number, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, errors.Wrap(protowire.ParseError(n), "error parsing deck spawn message tag")
		}
		data = data[n:]

		switch number {
		case deckSpawnFieldVersion, deckSpawnFieldNumberOfDecimals, deckSpawnFieldIssueMode:
			value, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, errors.Wrap(protowire.ParseError(n), "error parsing deck spawn message varint")
			}
			data = data[n:]
			switch number {
			case deckSpawnFieldVersion:
				msg.Version = uint32(value)
			case deckSpawnFieldNumberOfDecimals:
				msg.NumberOfDecimals = uint32(value)
			case deckSpawnFieldIssueMode:
				msg.IssueMode = IssueMode(value)
			}
		case deckSpawnFieldName, deckSpawnFieldAssetSpecificData:
			value, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, errors.Wrap(protowire.ParseError(n), "error parsing deck spawn message bytes")
			}
			data = data[n:]
			if number == deckSpawnFieldName {
				msg.Name = string(value)
			} else {
				msg.AssetSpecificData = string(value)
			}
		default:
			n := protowire.ConsumeFieldValue(number, typ, data)
			if n < 0 {
				return nil, errors.Wrap(protowire.ParseError(n), "error skipping unknown deck spawn message field")
			}
			data = data[n:]
		}
	}
	if msg.Version != MessageVersion {
		return nil, errors.Errorf("unsupported deck spawn message version %d", msg.Version)
	}
	if msg.Name == "" {
		return nil, errors.New("deck spawn message has no name")
	}
	return msg, nil
}

// Serialize encodes the message in protobuf wire format. Amounts use the
// packed repeated encoding.
func (msg *CardTransferMessage) Serialize() []byte {
	var b []byte
	b = protowire.AppendTag(b, cardTransferFieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(msg.Version))

	var packed []byte
	for _, amount := range msg.Amounts {
		packed = protowire.AppendVarint(packed, amount)
	}
	b = protowire.AppendTag(b, cardTransferFieldAmounts, protowire.BytesType)
	b = protowire.AppendBytes(b, packed)

	b = protowire.AppendTag(b, cardTransferFieldNumberOfDecimals, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(msg.NumberOfDecimals))
	if msg.AssetSpecificData != "" {
		b = protowire.AppendTag(b, cardTransferFieldAssetSpecificData, protowire.BytesType)
		b = protowire.AppendString(b, msg.AssetSpecificData)
	}
	return b
}

// DeserializeCardTransferMessage decodes a CardTransferMessage from protobuf
// wire format. Both packed and unpacked amount encodings are accepted.
func DeserializeCardTransferMessage(data []byte) (*CardTransferMessage, error) {
	msg := &CardTransferMessage{}
	for len(data) > 0 {
		number, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, errors.Wrap(protowire.ParseError(n), "error parsing card transfer message tag")
		}
		data = data[n:]

		switch {
		case number == cardTransferFieldAmounts && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, errors.Wrap(protowire.ParseError(n), "error parsing card transfer amounts")
			}
			data = data[n:]
			for len(packed) > 0 {
				amount, n := protowire.ConsumeVarint(packed)
				if n < 0 {
					return nil, errors.Wrap(protowire.ParseError(n), "error parsing packed card transfer amount")
				}
				packed = packed[n:]
				msg.Amounts = append(msg.Amounts, amount)
			}
		case number == cardTransferFieldAmounts:
			amount, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, errors.Wrap(protowire.ParseError(n), "error parsing card transfer amount")
			}
			data = data[n:]
			msg.Amounts = append(msg.Amounts, amount)
		case number == cardTransferFieldVersion || number == cardTransferFieldNumberOfDecimals:
			value, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, errors.Wrap(protowire.ParseError(n), "error parsing card transfer message varint")
			}
			data = data[n:]
			if number == cardTransferFieldVersion {
				msg.Version = uint32(value)
			} else {
				msg.NumberOfDecimals = uint32(value)
			}
		case number == cardTransferFieldAssetSpecificData:
			value, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, errors.Wrap(protowire.ParseError(n), "error parsing card transfer message data")
			}
			data = data[n:]
			msg.AssetSpecificData = string(value)
		default:
			n := protowire.ConsumeFieldValue(number, typ, data)
			if n < 0 {
				return nil, errors.Wrap(protowire.ParseError(n), "error skipping unknown card transfer message field")
			}
			data = data[n:]
		}
	}
	if msg.Version != MessageVersion {
		return nil, errors.Errorf("unsupported card transfer message version %d", msg.Version)
	}
	if len(msg.Amounts) == 0 {
		return nil, errors.New("card transfer message carries no amounts")
	}
	return msg, nil
}
