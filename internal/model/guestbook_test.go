package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePayload(t *testing.T, body string) EditEntryPayload {
	t.Helper()
	var p EditEntryPayload
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return p
}

func TestEditEntryPayload_TagsAbsentNullAndSet(t *testing.T) {
	absent := decodePayload(t, `{"message":"hi"}`)
	assert.False(t, absent.Tags.Set)

	null := decodePayload(t, `{"message":"hi","tags":null}`)
	assert.True(t, null.Tags.Set)
	assert.Nil(t, null.Tags.Value)

	set := decodePayload(t, `{"message":"hi","tags":["a","b"]}`)
	assert.True(t, set.Tags.Set)
	assert.Equal(t, []string{"a", "b"}, set.Tags.Value)
}

func TestEditEntryPayload_TagsMustBeStrings(t *testing.T) {
	var p EditEntryPayload
	assert.Error(t, json.Unmarshal([]byte(`{"message":"hi","tags":[1]}`), &p))
}

func TestEditEntryPayload_IsUseMarkdownOptional(t *testing.T) {
	assert.Nil(t, decodePayload(t, `{"message":"hi"}`).IsUseMarkdown)

	p := decodePayload(t, `{"message":"hi","isUseMarkdown":false}`)
	require.NotNil(t, p.IsUseMarkdown)
	assert.False(t, *p.IsUseMarkdown)
}

func TestEditEntryPayload_MessageBounds(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantErr bool
	}{
		{"empty", "", true},
		{"one char", "x", false},
		{"at max", strings.Repeat("x", MessageMaxLength), false},
		{"over max", strings.Repeat("x", MessageMaxLength+1), true},
		{"multibyte at max", strings.Repeat("é", MessageMaxLength), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := EditEntryPayload{Message: tt.message}
			if tt.wantErr {
				assert.Error(t, p.Validate())
			} else {
				assert.NoError(t, p.Validate())
			}
		})
	}
}

func TestEditEntryPayload_Params(t *testing.T) {
	md := true
	p := EditEntryPayload{
		Message:       "new",
		Tags:          OptionalTags{Set: true, Value: []string{"a"}},
		IsUseMarkdown: &md,
	}

	params := p.Params()
	assert.Equal(t, "new", params.Message)
	assert.Equal(t, p.Tags, params.Tags)
	assert.Same(t, p.IsUseMarkdown, params.IsUseMarkdown)
}

func TestEntryResponse_JSON(t *testing.T) {
	resp := EntryResponse{
		ID:             "abc123",
		GuestbookEntry: GuestbookEntry{ID: 7, UserID: "u1", Message: "hello"},
	}

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"id":"abc123"`)
	assert.Contains(t, string(out), `"userId":"u1"`)
	assert.NotContains(t, string(out), `"ID"`)
}

func TestGetEntryRequest_Validate(t *testing.T) {
	assert.Error(t, (&GetEntryRequest{}).Validate())
	assert.NoError(t, (&GetEntryRequest{ID: "abc"}).Validate())
}
