package sidestore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sable-db/sable/go/common"

	_ "github.com/mattn/go-sqlite3"
)

var (
	// See https://www.sqlite.org/pragma.html
	kConfigureConnection = []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA locking_mode = EXCLUSIVE",
	}
)

const (
	kCheckSchemaStmt = "SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name IN ('data_table', 'metadata_table')"

	kCreateDataTable = "CREATE TABLE IF NOT EXISTS data_table (key TEXT PRIMARY KEY, value BLOB)"
	kPutDataStmt     = "INSERT OR REPLACE INTO data_table(key, value) VALUES (?,?)"
	kGetDataStmt     = "SELECT value FROM data_table WHERE key = ?"

	kCreateMetadataTable = "CREATE TABLE IF NOT EXISTS metadata_table (blockhash TEXT, key TEXT, value TEXT, UNIQUE(blockhash, key))"
	kPutMetadataStmt     = "INSERT OR REPLACE INTO metadata_table(blockhash, key, value) VALUES (?,?,?)"
	kGetMetadataStmt     = "SELECT value FROM metadata_table WHERE blockhash = ? AND key = ?"
	kDropMetadataStmt    = "DELETE FROM metadata_table WHERE blockhash = ?"
	kRenameMetadataStmt  = "UPDATE OR REPLACE metadata_table SET blockhash = ? WHERE blockhash = ?"
	kListMetadataStmt    = "SELECT DISTINCT blockhash FROM metadata_table"
)

// Store is a content-addressed relational store keeping the raw bytes of
// values referenced by the trie index. Value rows are keyed by the hex
// encoding of their content hash, making writes idempotent. A second table
// holds lifecycle metadata rows bound to a chain tip; these rows are renamed
// when a block under construction receives its final identifier and dropped
// when a provisional block is discarded.
type Store struct {
	db               *sql.DB
	putDataStmt      *sql.Stmt
	getDataStmt      *sql.Stmt
	putMetadataStmt  *sql.Stmt
	getMetadataStmt  *sql.Stmt
	dropMetadataStmt *sql.Stmt
	listMetadataStmt *sql.Stmt
}

// Open opens the side store in the given file, initializing its schema
// inside a transaction if it is not present yet. A schema initialization
// failure leaves the file untouched and must be treated as fatal by the
// caller, since proceeding without the side store risks diverging from
// the trie.
func Open(file string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+file)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite; %s", err)
	}
	for _, cmd := range kConfigureConnection {
		if _, err := db.Exec(cmd); err != nil {
			return nil, fmt.Errorf("failed to configure connection with %s; %s", cmd, err)
		}
	}

	hasSchema, err := checkSchema(db)
	if err != nil {
		return nil, err
	}
	if !hasSchema {
		if err := initializeSchema(db); err != nil {
			return nil, err
		}
	}

	putData, err := db.Prepare(kPutDataStmt)
	if err != nil {
		return nil, err
	}
	getData, err := db.Prepare(kGetDataStmt)
	if err != nil {
		return nil, err
	}
	putMetadata, err := db.Prepare(kPutMetadataStmt)
	if err != nil {
		return nil, err
	}
	getMetadata, err := db.Prepare(kGetMetadataStmt)
	if err != nil {
		return nil, err
	}
	dropMetadata, err := db.Prepare(kDropMetadataStmt)
	if err != nil {
		return nil, err
	}
	listMetadata, err := db.Prepare(kListMetadataStmt)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:               db,
		putDataStmt:      putData,
		getDataStmt:      getData,
		putMetadataStmt:  putMetadata,
		getMetadataStmt:  getMetadata,
		dropMetadataStmt: dropMetadata,
		listMetadataStmt: listMetadata,
	}, nil
}

// checkSchema tests whether both side-store tables are already present.
func checkSchema(db *sql.DB) (bool, error) {
	rows, err := db.Query(kCheckSchemaStmt)
	if err != nil {
		return false, fmt.Errorf("failed to check side-store schema; %s", err)
	}
	defer rows.Close()
	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return false, err
		}
	}
	return count == 2, rows.Err()
}

func initializeSchema(db *sql.DB) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction; %s", err)
	}
	var succeed bool
	defer func() {
		if !succeed {
			if err := tx.Rollback(); err != nil {
				panic(fmt.Errorf("failed to rollback; %s", err))
			}
		}
	}()
	if _, err := tx.Exec(kCreateDataTable); err != nil {
		return fmt.Errorf("failed to create data table; %s", err)
	}
	if _, err := tx.Exec(kCreateMetadataTable); err != nil {
		return fmt.Errorf("failed to create metadata table; %s", err)
	}
	succeed = true
	return tx.Commit()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores a value under the hex encoding of its content hash. Re-writing
// an existing hash replaces the row with identical content and is a no-op
// for readers.
func (s *Store) Put(hashHex string, value []byte) error {
	if _, err := s.putDataStmt.Exec(hashHex, value); err != nil {
		return fmt.Errorf("failed to put value %s; %s", hashHex, err)
	}
	return nil
}

// Get returns the value bytes stored under the given content hash, or
// false if no such row exists. The store itself cannot distinguish a
// legitimate miss from a trie/side-store divergence; that judgement is
// made by the caller.
func (s *Store) Get(hashHex string) ([]byte, bool, error) {
	rows, err := s.getDataStmt.Query(hashHex)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()
	if rows.Next() {
		var value []byte
		err = rows.Scan(&value)
		return value, true, err
	}
	return nil, false, rows.Err()
}

// PutMetadata binds a bookkeeping row to the given chain tip.
func (s *Store) PutMetadata(tip common.BlockID, key, value string) error {
	if _, err := s.putMetadataStmt.Exec(tip.String(), key, value); err != nil {
		return fmt.Errorf("failed to put metadata for %s; %s", tip, err)
	}
	return nil
}

// GetMetadata returns the bookkeeping row bound to the given chain tip,
// or false if there is none.
func (s *Store) GetMetadata(tip common.BlockID, key string) (string, bool, error) {
	rows, err := s.getMetadataStmt.Query(tip.String(), key)
	if err != nil {
		return "", false, err
	}
	defer rows.Close()
	if rows.Next() {
		var value string
		err = rows.Scan(&value)
		return value, true, err
	}
	return "", false, rows.Err()
}

// DropMetadata removes all bookkeeping rows bound to the given chain tip.
// Content-addressed value rows are never removed here; orphaned values are
// harmless since nothing reachable references them.
func (s *Store) DropMetadata(tip common.BlockID) error {
	if _, err := s.dropMetadataStmt.Exec(tip.String()); err != nil {
		return fmt.Errorf("failed to drop metadata for %s; %s", tip, err)
	}
	return nil
}

// RenameMetadata re-binds all bookkeeping rows from a provisional chain tip
// to the final block identifier assigned at commit time.
func (s *Store) RenameMetadata(from, to common.BlockID) error {
	if _, err := s.db.Exec(kRenameMetadataStmt, to.String(), from.String()); err != nil {
		return fmt.Errorf("failed to rename metadata %s -> %s; %s", from, to, err)
	}
	return nil
}

// ListMetadataTips returns the distinct chain tips with bookkeeping rows.
// It is used at open time to detect rows whose tip never made it into the
// trie, e.g. after a crash between metadata rename and trie finalization.
func (s *Store) ListMetadataTips() ([]common.BlockID, error) {
	rows, err := s.listMetadataStmt.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tips []common.BlockID
	for rows.Next() {
		var hexID string
		if err := rows.Scan(&hexID); err != nil {
			return nil, err
		}
		id, err := common.BlockIDFromString(hexID)
		if err != nil {
			return nil, fmt.Errorf("corrupted metadata row; %s", err)
		}
		tips = append(tips, id)
	}
	return tips, rows.Err()
}
