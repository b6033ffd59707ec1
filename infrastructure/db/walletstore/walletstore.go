package walletstore

import (
	"encoding/binary"
	"encoding/json"
	"sync"

	"github.com/peerassets/pawallet/domain/ledger"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldbErrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var (
	walletKeyPrefix  = []byte("wallet/")
	messageKeyPrefix = []byte("msglog/")
)

// Store persists the reconstructed wallet snapshots and the routine message
// log. It is the process's only storage boundary: everything above it hands
// artifacts over and performs no disk I/O of its own.
type Store struct {
	ldb *leveldb.DB

	mtx     sync.Mutex
	nextSeq uint64
}

// Open opens the store at the given path, creating it if needed. A corrupted
// database is recovered rather than failing the open.
func Open(path string) (*Store, error) {
	ldb, err := leveldb.OpenFile(path, nil)
	if _, corrupted := err.(*ldbErrors.ErrCorrupted); corrupted {
		log.Warnf("Database corruption detected for path %s: %s", path, err)
		ldb, err = leveldb.RecoverFile(path, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "error recovering database at %s", path)
		}
		log.Warnf("Database recovered from corruption for path %s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error opening database at %s", path)
	}

	store := &Store{ldb: ldb}
	store.nextSeq, err = store.lastMessageSequence()
	if err != nil {
		ldb.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.ldb.Close()
}

func walletKey(address string) []byte {
	return append(append([]byte{}, walletKeyPrefix...), address...)
}

func messageKey(sequence uint64) []byte {
	key := append([]byte{}, messageKeyPrefix...)
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], sequence)
	return append(key, seq[:]...)
}

// PutWallet stores the wallet as the current snapshot of its address,
// replacing any previous snapshot.
func (s *Store) PutWallet(wallet *ledger.Wallet) error {
	serialized, err := json.Marshal(wallet)
	if err != nil {
		return errors.Wrapf(err, "error serializing the wallet of %s", wallet.Address)
	}
	err = s.ldb.Put(walletKey(wallet.Address), serialized, nil)
	if err != nil {
		return errors.Wrapf(err, "error storing the wallet of %s", wallet.Address)
	}
	return nil
}

// Wallet returns the stored snapshot of the given address, or nil when none
// has been stored.
func (s *Store) Wallet(address string) (*ledger.Wallet, error) {
	serialized, err := s.ldb.Get(walletKey(address), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error loading the wallet of %s", address)
	}
	wallet := &ledger.Wallet{}
	err = json.Unmarshal(serialized, wallet)
	if err != nil {
		return nil, errors.Wrapf(err, "error deserializing the wallet of %s", address)
	}
	return wallet, nil
}

// lastMessageSequence finds the sequence number the message log continues
// from.
func (s *Store) lastMessageSequence() (uint64, error) {
	iterator := s.ldb.NewIterator(util.BytesPrefix(messageKeyPrefix), nil)
	defer iterator.Release()

	if !iterator.Last() {
		return 0, errors.WithStack(iterator.Error())
	}
	key := iterator.Key()
	sequence := binary.BigEndian.Uint64(key[len(messageKeyPrefix):])
	return sequence + 1, nil
}
