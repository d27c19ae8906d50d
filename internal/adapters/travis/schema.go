package travis

import (
	"bytes"
	"encoding/json"
	"fmt"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/target/matrix-leader/internal/domain/matrix"
	apperrors "github.com/target/matrix-leader/internal/errors"
)

// successResult is the Travis result code of a passed job.
const successResult = 0

// parseMatrix locates the jobs array in a build payload with the JMESPath
// expression path and maps every entry onto a JobStatus.
//
// Each entry must carry "number" (string or integer) and "finished_at"
// (string or null); "result" is an integer or null and may be absent while
// the job runs.
func parseMatrix(raw []byte, path, leaderJobNumber string) (matrix.Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeParse, "decode build payload")
	}

	found, err := jmespath.Search(path, doc)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeParse, "evaluate matrix path %q", path)
	}
	if found == nil {
		return nil, apperrors.Parse(path, "build payload has no jobs array")
	}
	entries, ok := found.([]any)
	if !ok {
		return nil, apperrors.Parse(path, fmt.Sprintf("jobs must be an array, got %T", found))
	}

	snapshot := make(matrix.Snapshot, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, entry := range entries {
		job, err := parseJob(entry)
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.ErrCodeParse, "%s[%d]", path, i)
		}
		if _, dup := seen[job.Number]; dup {
			return nil, apperrors.Parse("number", fmt.Sprintf("duplicate job number %q", job.Number))
		}
		seen[job.Number] = struct{}{}

		job.IsLeader = job.Number == leaderJobNumber
		snapshot = append(snapshot, job)
	}
	return snapshot, nil
}

func parseJob(entry any) (matrix.JobStatus, error) {
	fields, ok := entry.(map[string]any)
	if !ok {
		return matrix.JobStatus{}, apperrors.Parse("", fmt.Sprintf("job must be an object, got %T", entry))
	}

	number, err := parseNumber(fields)
	if err != nil {
		return matrix.JobStatus{}, err
	}

	finishedAt, present := fields["finished_at"]
	if !present {
		return matrix.JobStatus{}, apperrors.Parse("finished_at", "missing finished_at")
	}
	var finished bool
	switch v := finishedAt.(type) {
	case nil:
	case string:
		finished = v != ""
	default:
		return matrix.JobStatus{}, apperrors.Parse("finished_at", fmt.Sprintf("finished_at must be a string or null, got %T", v))
	}

	succeeded := false
	switch v := fields["result"].(type) {
	case nil:
	case json.Number:
		code, convErr := v.Int64()
		if convErr != nil {
			return matrix.JobStatus{}, apperrors.Wrap(convErr, apperrors.ErrCodeParse, "result must be an integer")
		}
		succeeded = code == successResult
	default:
		return matrix.JobStatus{}, apperrors.Parse("result", fmt.Sprintf("result must be an integer or null, got %T", v))
	}

	return matrix.JobStatus{
		Number:      number,
		IsFinished:  finished,
		IsSucceeded: finished && succeeded,
	}, nil
}

func parseNumber(fields map[string]any) (string, error) {
	switch v := fields["number"].(type) {
	case string:
		if v == "" {
			return "", apperrors.Parse("number", "job number is empty")
		}
		return v, nil
	case json.Number:
		return v.String(), nil
	case nil:
		return "", apperrors.Parse("number", "missing job number")
	default:
		return "", apperrors.Parse("number", fmt.Sprintf("job number must be a string or integer, got %T", v))
	}
}
