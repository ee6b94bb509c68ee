// Package serialize implements the on-disk binary format for a built
// index (spec.md §6): a gzipped stream of fixed-width little-endian
// fields, so a TokensDFA can be written once at build time and read back
// cheaply at serving time without re-running the construction pipeline.
//
// Layout, all integers little-endian:
//
//	uint32 vocab_size
//	uint32 eos_token_id
//	uint32 initial_state_id
//	uint32 num_final_states
//	uint32 final_states[num_final_states]
//	byte   index_type          (currently 1)
//	uint32 num_states
//	repeated num_states times:
//	  uint32 state_id
//	  uint32 num_transitions
//	  repeated num_transitions times:
//	    uint32 token_id
//	    uint32 next_state_id
package serialize

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/tokendfa/tokendfa/internal/conv"
	"github.com/tokendfa/tokendfa/rex"
	"github.com/tokendfa/tokendfa/table"
	"github.com/tokendfa/tokendfa/vocab"
)

// IndexType identifies the on-disk transitions-table encoding. Only one
// encoding is defined; the byte exists so a future format can be
// distinguished from this one without breaking readers of either.
const IndexType byte = 1

// Index is the self-contained set of fields a TokensDFA needs written to
// or read from disk; it has no dependency on the root package so a reader
// can reconstruct a table without constructing a full build pipeline.
type Index struct {
	VocabSize    int
	EOSTokenID   vocab.TokenId
	InitialState rex.StateID
	FinalStates  []rex.StateID
	Table        *table.Table
}

// WriteTo gzips idx's binary encoding to w.
func WriteTo(w io.Writer, idx *Index) error {
	gz := gzip.NewWriter(w)
	if err := writeIndex(gz, idx); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

func writeIndex(w io.Writer, idx *Index) error {
	final := append([]rex.StateID(nil), idx.FinalStates...)
	sort.Slice(final, func(i, j int) bool { return final[i] < final[j] })

	header := []uint32{
		conv.IntToUint32(idx.VocabSize),
		uint32(idx.EOSTokenID),
		uint32(idx.InitialState),
		conv.IntToUint32(len(final)),
	}
	if err := writeUint32s(w, header); err != nil {
		return fmt.Errorf("serialize: writing header: %w", err)
	}
	finalIDs := make([]uint32, len(final))
	for i, s := range final {
		finalIDs[i] = uint32(s)
	}
	if err := writeUint32s(w, finalIDs); err != nil {
		return fmt.Errorf("serialize: writing final states: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, IndexType); err != nil {
		return fmt.Errorf("serialize: writing index type: %w", err)
	}

	states := idx.Table.States()
	if err := writeUint32s(w, []uint32{conv.IntToUint32(len(states))}); err != nil {
		return fmt.Errorf("serialize: writing state count: %w", err)
	}
	for _, s := range states {
		n := idx.Table.NumTransitions(s)
		if err := writeUint32s(w, []uint32{uint32(s), conv.IntToUint32(n)}); err != nil {
			return fmt.Errorf("serialize: writing state %d header: %w", s, err)
		}
		var writeErr error
		idx.Table.Transitions(s, func(token vocab.TokenId, to rex.StateID) bool {
			if err := writeUint32s(w, []uint32{uint32(token), uint32(to)}); err != nil {
				writeErr = err
				return false
			}
			return true
		})
		if writeErr != nil {
			return fmt.Errorf("serialize: writing state %d transitions: %w", s, writeErr)
		}
	}
	return nil
}

// ReadFrom reads and gunzips a stream written by WriteTo.
func ReadFrom(r io.Reader) (*Index, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("serialize: opening gzip stream: %w", err)
	}
	defer gz.Close()
	return readIndex(gz)
}

func readIndex(r io.Reader) (*Index, error) {
	header, err := readUint32s(r, 4)
	if err != nil {
		return nil, fmt.Errorf("serialize: reading header: %w", err)
	}
	vocabSize, eos, start, numFinal := header[0], header[1], header[2], header[3]

	finalIDs, err := readUint32s(r, int(numFinal))
	if err != nil {
		return nil, fmt.Errorf("serialize: reading final states: %w", err)
	}
	final := make([]rex.StateID, numFinal)
	for i, v := range finalIDs {
		final[i] = rex.StateID(v)
	}

	var indexType byte
	if err := binary.Read(r, binary.LittleEndian, &indexType); err != nil {
		return nil, fmt.Errorf("serialize: reading index type: %w", err)
	}
	if indexType != IndexType {
		return nil, fmt.Errorf("serialize: unsupported index type %d", indexType)
	}

	stateCountBuf, err := readUint32s(r, 1)
	if err != nil {
		return nil, fmt.Errorf("serialize: reading state count: %w", err)
	}
	numStates := stateCountBuf[0]

	tbl := table.New(int(vocabSize))
	for i := uint32(0); i < numStates; i++ {
		stateHeader, err := readUint32s(r, 2)
		if err != nil {
			return nil, fmt.Errorf("serialize: reading state header %d: %w", i, err)
		}
		stateID := rex.StateID(stateHeader[0])
		numTransitions := stateHeader[1]
		for j := uint32(0); j < numTransitions; j++ {
			edge, err := readUint32s(r, 2)
			if err != nil {
				return nil, fmt.Errorf("serialize: reading transition %d of state %v: %w", j, stateID, err)
			}
			token := vocab.TokenId(edge[0])
			to := rex.StateID(edge[1])
			if err := tbl.Insert(stateID, token, to); err != nil {
				return nil, fmt.Errorf("serialize: rebuilding state %v: %w", stateID, err)
			}
		}
	}

	return &Index{
		VocabSize:    int(vocabSize),
		EOSTokenID:   vocab.TokenId(eos),
		InitialState: rex.StateID(start),
		FinalStates:  final,
		Table:        tbl,
	}, nil
}

func writeUint32s(w io.Writer, vs []uint32) error {
	for _, v := range vs {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func readUint32s(r io.Reader, n int) ([]uint32, error) {
	out := make([]uint32, n)
	for i := range out {
		if err := binary.Read(r, binary.LittleEndian, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
