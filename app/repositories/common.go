package repositories

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"inkpost/app/models"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix = "post:"

	// Sequence keys for auto-incrementing IDs
	PostSeqKey = "seq:post"
)

// postKey zero-pads the id so that Badger's byte ordering matches id order.
func postKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%010d", PostKeyPrefix, id))
}

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id int
	item, err := txn.Get([]byte(seqKey))
	if err == badger.ErrKeyNotFound {
		id = 1
	} else if err != nil {
		return 0, fmt.Errorf("failed to get sequence: %w", err)
	} else {
		err = item.Value(func(val []byte) error {
			id, err = strconv.Atoi(string(val))
			if err != nil {
				return fmt.Errorf("failed to parse sequence: %w", err)
			}
			id++
			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	if err := txn.Set([]byte(seqKey), []byte(strconv.Itoa(id))); err != nil {
		return 0, fmt.Errorf("failed to update sequence: %w", err)
	}

	return id, nil
}

// setSequence moves a sequence forward so the next id is above id.
func setSequence(txn *badger.Txn, seqKey string, id int) error {
	return txn.Set([]byte(seqKey), []byte(strconv.Itoa(id)))
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// writeBackup writes one JSON document per post.
func writeBackup(w io.Writer, posts []*models.Post) error {
	bw := bufio.NewWriter(w)
	for _, post := range posts {
		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		if _, err := bw.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}
	}
	return bw.Flush()
}

// ReadBackup parses the output of Store.Backup. Every post must carry an id.
func ReadBackup(r io.Reader) ([]*models.Post, error) {
	var posts []*models.Post
	dec := json.NewDecoder(r)
	for dec.More() {
		var post models.Post
		if err := dec.Decode(&post); err != nil {
			return nil, fmt.Errorf("failed to read backup: %w", err)
		}
		if post.ID <= 0 {
			return nil, fmt.Errorf("backup entry without id: %q", post.Title)
		}
		posts = append(posts, &post)
	}
	return posts, nil
}
