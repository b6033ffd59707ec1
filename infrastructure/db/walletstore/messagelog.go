package walletstore

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/peerassets/pawallet/infrastructure/routine"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// MessageRecord is one persisted entry of the routine message stream.
// Parameters and results are not persisted; the log records what happened,
// not the payloads that flowed through.
type MessageRecord struct {
	Sequence uint64    `json:"sequence"`
	Routine  string    `json:"routine"`
	Stage    string    `json:"stage"`
	Type     string    `json:"type"`
	Error    string    `json:"error,omitempty"`
	Time     time.Time `json:"time"`
}

// Append persists a routine message at the end of the message log. Store
// implements routine.Sink with it.
func (s *Store) Append(msg routine.Message) error {
	record := &MessageRecord{
		Routine: msg.RoutineName(),
		Stage:   msg.MessageStage().String(),
		Type:    msg.Type(),
		Time:    time.Now(),
	}
	if failed, ok := msg.(routine.Failed); ok && failed.Err != nil {
		record.Error = failed.Err.Error()
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()
	record.Sequence = s.nextSeq

	serialized, err := json.Marshal(record)
	if err != nil {
		return errors.Wrapf(err, "error serializing message %s", record.Type)
	}
	err = s.ldb.Put(messageKey(record.Sequence), serialized, nil)
	if err != nil {
		return errors.Wrapf(err, "error appending message %s", record.Type)
	}
	s.nextSeq++
	return nil
}

// Messages returns up to limit entries from the end of the message log,
// oldest first. A non-positive limit returns the whole log.
func (s *Store) Messages(limit int) ([]*MessageRecord, error) {
	iterator := s.ldb.NewIterator(util.BytesPrefix(messageKeyPrefix), nil)
	defer iterator.Release()

	var records []*MessageRecord
	for ok := iterator.Last(); ok; ok = iterator.Prev() {
		record := &MessageRecord{}
		err := json.Unmarshal(iterator.Value(), record)
		if err != nil {
			key := iterator.Key()
			return nil, errors.Wrapf(err, "error deserializing message %d",
				binary.BigEndian.Uint64(key[len(messageKeyPrefix):]))
		}
		records = append(records, record)
		if limit > 0 && len(records) == limit {
			break
		}
	}
	if err := iterator.Error(); err != nil {
		return nil, errors.Wrap(err, "error iterating the message log")
	}

	// Reverse into oldest-first order.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}
