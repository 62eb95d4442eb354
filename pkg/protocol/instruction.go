package protocol

import (
	"encoding/json"
	"fmt"
)

// Op is the kind of an outbound instruction.
type Op string

const (
	OpFill            Op = "fill"            // Replace the body content with HTML
	OpSetAttr         Op = "setAttr"         // Set attribute Key to Value on ID
	OpSetStyle        Op = "setStyle"        // Set style property Key to Value on ID
	OpSetText         Op = "setText"         // Replace the text of ID with Value
	OpReplaceChildren Op = "replaceChildren" // Replace the children of ID with HTML
	OpRemove          Op = "remove"          // Remove ID from the document
	OpListen          Op = "listen"          // Start forwarding event Key on ID
	OpUnlisten        Op = "unlisten"        // Stop forwarding event Key on ID
	OpSetTitle        Op = "setTitle"        // Set the window title to Value
	OpEval            Op = "eval"            // Evaluate Value as script
)

// Instruction is one outbound change to the live document.
type Instruction struct {
	Op    Op     `json:"op"`
	ID    string `json:"id,omitempty"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
	HTML  string `json:"html,omitempty"`
}

// String returns a short description for logs.
func (i Instruction) String() string {
	if i.ID == "" {
		return string(i.Op)
	}
	return fmt.Sprintf("%s(%s)", i.Op, i.ID)
}

// Encode returns the JSON form sent over socket transports.
func (i Instruction) Encode() ([]byte, error) {
	return json.Marshal(i)
}

// DecodeInstruction parses the JSON form of an instruction.
func DecodeInstruction(raw []byte) (Instruction, error) {
	var i Instruction
	if err := json.Unmarshal(raw, &i); err != nil {
		return Instruction{}, err
	}
	if i.Op == "" {
		return Instruction{}, fmt.Errorf("protocol: instruction without op")
	}
	return i, nil
}

// Script returns JavaScript that applies the instruction through the
// document glue. Every string reaches the script as a JSON literal, so
// values cannot break out of it.
func (i Instruction) Script() string {
	if i.Op == OpEval {
		return i.Value
	}
	b, err := json.Marshal(i)
	if err != nil {
		// Instruction only holds strings, which always marshal.
		panic(err)
	}
	return "window.__jo.apply(" + string(b) + ");"
}
