package entities

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a host value crossing the bridge.
// The set is closed: conversion sites switch over it exhaustively.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindBuffer
	KindFunction
)

var kindNames = [...]string{
	KindNull:     "null",
	KindNumber:   "number",
	KindString:   "string",
	KindBuffer:   "buffer",
	KindFunction: "function",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the declared variants.
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// ParseKind resolves a kind name as written in manifests and configs.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return KindNull, fmt.Errorf("unknown value kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid value kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
