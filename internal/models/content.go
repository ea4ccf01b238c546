// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"strings"
	"time"
)

// PostStatus represents the publishing state of a content entity.
type PostStatus string

const (
	PostStatusPublish PostStatus = "publish"
	PostStatusDraft   PostStatus = "draft"
	PostStatusPending PostStatus = "pending"
	PostStatusPrivate PostStatus = "private"
	PostStatusFuture  PostStatus = "future"
	PostStatusTrash   PostStatus = "trash"
)

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusPublish, PostStatusDraft, PostStatusPending,
		PostStatusPrivate, PostStatusFuture, PostStatusTrash:
		return true
	}
	return false
}

// Post is a row of the generic content table. Templates and any other
// entity kind share it, differentiated by PostType.
type Post struct {
	ID        int64      `json:"id"`
	PostType  string     `json:"post_type"`
	Title     string     `json:"title"`
	Status    PostStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Meta holds the metadata of one content entity keyed by meta key.
type Meta map[string]string

// Lookup returns the stored value and whether the key exists at all.
func (m Meta) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Get returns the stored value or an empty string.
func (m Meta) Get(key string) string {
	return m[key]
}

// Flag returns the three-state reading of a boolean-ish meta value.
func (m Meta) Flag(key string) Flag {
	v, ok := m[key]
	if !ok {
		return FlagAbsent
	}
	return ParseFlag(v)
}

// Flag is a stored boolean that may also be missing altogether.
type Flag int

const (
	FlagAbsent Flag = iota
	FlagFalse
	FlagTrue
)

// ParseFlag reads a present value. Only the usual truthy spellings count
// as true.
func ParseFlag(v string) Flag {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return FlagTrue
	}
	return FlagFalse
}

// Bool resolves the flag, using fallback when the value is absent.
func (f Flag) Bool(fallback bool) bool {
	switch f {
	case FlagTrue:
		return true
	case FlagFalse:
		return false
	}
	return fallback
}
