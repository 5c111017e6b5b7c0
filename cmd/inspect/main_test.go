package main

import (
	"bytes"
	"dm-lab/repositories"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	users := []repositories.DiskUser{
		{ID: "u1", Username: "alice", Password: "$2a$10$secrethash", FullName: "Alice", CreatedAt: at},
		{ID: "u2", Username: "bob", Password: "$2a$10$otherhash", FullName: "Bob", CreatedAt: at, IsOnline: true},
	}
	messages := []repositories.DiskMessage{
		{ID: "m1", SenderID: "u1", ReceiverID: "u2", Content: "hello", Timestamp: at},
		{ID: "m2", SenderID: "u2", ReceiverID: "u1", Content: "hi", Timestamp: at.Add(time.Minute)},
		{ID: "m3", SenderID: "u1", ReceiverID: "ghost", Content: "anyone?", Timestamp: at},
	}

	var out bytes.Buffer
	render(&out, false, users, messages)

	text := out.String()
	req.Contains(text, "alice")
	req.Contains(text, "bob")
	req.NotContains(text, "secrethash")
	req.NotContains(text, "hello")
	req.Contains(text, "alice <-> bob")
	req.Contains(text, "2026-03-01 12:01:00")
	req.Contains(text, "unknown(ghost)")
}
