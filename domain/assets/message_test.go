package assets

import (
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestDeckSpawnMessageRoundTrip(t *testing.T) {
	msg := &DeckSpawnMessage{
		Version:           MessageVersion,
		Name:              "seats",
		NumberOfDecimals:  3,
		IssueMode:         Combine(IssueModeOnce, IssueModeMono),
		AssetSpecificData: "row 4",
	}
	decoded, err := DeserializeDeckSpawnMessage(msg.Serialize())
	if err != nil {
		t.Fatalf("DeserializeDeckSpawnMessage: %+v", err)
	}
	if !reflect.DeepEqual(decoded, msg) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, msg)
	}
}

func TestCardTransferMessageRoundTrip(t *testing.T) {
	msg := &CardTransferMessage{
		Version:          MessageVersion,
		NumberOfDecimals: 3,
		Amounts:          []uint64{1, 0, 300000},
	}
	decoded, err := DeserializeCardTransferMessage(msg.Serialize())
	if err != nil {
		t.Fatalf("DeserializeCardTransferMessage: %+v", err)
	}
	if !reflect.DeepEqual(decoded, msg) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, msg)
	}
}

func TestDeserializeSkipsUnknownFields(t *testing.T) {
	b := (&DeckSpawnMessage{Version: MessageVersion, Name: "seats"}).Serialize()
	b = protowire.AppendTag(b, 9, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)

	decoded, err := DeserializeDeckSpawnMessage(b)
	if err != nil {
		t.Fatalf("DeserializeDeckSpawnMessage: %+v", err)
	}
	if decoded.Name != "seats" {
		t.Fatalf("unexpected name %q", decoded.Name)
	}
}

func TestDeserializeRejectsWrongVersion(t *testing.T) {
	msg := &DeckSpawnMessage{Version: 9, Name: "seats"}
	if _, err := DeserializeDeckSpawnMessage(msg.Serialize()); err == nil {
		t.Fatal("expected version 9 to be rejected")
	}

	card := &CardTransferMessage{Version: 9, Amounts: []uint64{1}}
	if _, err := DeserializeCardTransferMessage(card.Serialize()); err == nil {
		t.Fatal("expected version 9 to be rejected")
	}
}
