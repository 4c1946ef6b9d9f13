package store

import (
	"encoding/json"
	"fmt"
)

func EncodeProgram(rec ProgramRecord) ([]byte, error) {
	return json.Marshal(rec)
}

func DecodeProgram(data []byte) (ProgramRecord, error) {
	var rec ProgramRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return ProgramRecord{}, err
	}
	if err := checkDigest(rec.Digest, rec.Code); err != nil {
		return ProgramRecord{}, err
	}
	return rec, nil
}

func EncodeRun(rec RunRecord) ([]byte, error) {
	return json.Marshal(rec)
}

func DecodeRun(data []byte) (RunRecord, error) {
	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return RunRecord{}, err
	}
	if err := checkDigest(rec.Digest, rec.Code); err != nil {
		return RunRecord{}, err
	}
	return rec, nil
}

// checkDigest rejects payloads whose code no longer matches the key they
// were filed under.
func checkDigest(digest, code string) error {
	if digest == "" {
		return fmt.Errorf("record has no digest")
	}
	if got := Digest(code); got != digest {
		return fmt.Errorf("digest mismatch: record says %s, code hashes to %s", digest, got)
	}
	return nil
}
