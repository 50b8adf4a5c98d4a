package banyan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// CreatePostRequest is the body of POST /post.
type CreatePostRequest struct {
	Content string `json:"content"`
	UserID  string `json:"user_id"`
}

// RephraseRequest is the body of POST /rephrase.
type RephraseRequest struct {
	Content string `json:"content"`
}

// RephraseResponse is the body returned by POST /rephrase.
type RephraseResponse struct {
	Rephrased *string `json:"rephrased"`
}

// ApiPost is one element of the GET /posts array.
type ApiPost struct {
	ID       FlexibleID `json:"id"`
	Content  *string    `json:"content"`
	Username string     `json:"username"`
	Time     string     `json:"time"`
	UserID   FlexibleID `json:"user_id"`
}

// FlexibleID accepts ids sent either as JSON strings or numbers.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*f = FlexibleID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexibleID(n.String())
	return nil
}

// createAck is the optional shape of the POST /post acknowledgement.
type createAck struct {
	ID FlexibleID `json:"id"`
}
