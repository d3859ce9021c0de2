package status

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/markusressel/nvfancontrol/internal/util"
)

// Print writes the snapshot as a single JSON line
func Print(w io.Writer, snapshot Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// WriteFile atomically replaces the file at path with the snapshot as JSON
func WriteFile(path string, snapshot Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	expanded, err := util.ExpandPath(path)
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(expanded, append(data, '\n'))
}
