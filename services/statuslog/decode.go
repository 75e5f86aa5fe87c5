//go:build !tinygo

package statuslog

import (
	"bytes"
	"encoding/json"

	"ppsdo-go/errcode"
	"ppsdo-go/types"
)

// Decode parses one line produced by AppendStatus.
func Decode(line []byte) (types.Status, error) {
	var st types.Status
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return st, errcode.New(errcode.InvalidParams, "statuslog.decode", "not a status line")
	}
	if err := json.Unmarshal(line, &st); err != nil {
		return st, errcode.Wrap(errcode.InvalidParams, "statuslog.decode", err)
	}
	return st, nil
}
