// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package models

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"slices"
	"strings"

	"github.com/born-ml/born/tensor"
	"github.com/pkg/errors"
)

// ModelTypeKey is the metadata key holding the model type of a checkpoint.
const ModelTypeKey = "model_type"

// ErrInvalidCheckpoint is returned when a checkpoint file cannot be parsed.
var ErrInvalidCheckpoint = errors.New("invalid checkpoint")

// StateDicter is implemented by modules whose parameters can be checkpointed.
type StateDicter interface {
	StateDict() map[string]*tensor.RawTensor
}

// Checkpoint is the content of a checkpoint file.
type Checkpoint struct {
	ModelType string
	Metadata  map[string]string
	Tensors   map[string]*tensor.RawTensor
}

// tensorInfo is the header entry of one tensor.
type tensorInfo struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

const metadataKey = "__metadata__"

// Save writes the state dict of module to path in SafeTensors format.
//
// Format:
//
//	[8 bytes: header size (uint64 LE)]
//	[header: JSON, tensor name -> dtype/shape/offsets, plus "__metadata__"]
//	[tensor data: little-endian float32, tensors in name order]
//
// The model type is stored in the metadata under ModelTypeKey.
func Save(path string, module StateDicter, modelType string, metadata map[string]string) error {
	stateDict := module.StateDict()
	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		names = append(names, name)
	}
	slices.Sort(names)

	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[ModelTypeKey] = modelType

	header := map[string]any{metadataKey: meta}
	var offset int64
	for _, name := range names {
		raw := stateDict[name]
		if raw.DType() != tensor.Float32 {
			return errors.Errorf("tensor %q: unsupported dtype %s", name, raw.DType())
		}
		shape := make([]int64, len(raw.Shape()))
		for i, dim := range raw.Shape() {
			shape[i] = int64(dim)
		}
		size := int64(4 * raw.NumElements())
		header[name] = tensorInfo{DType: "F32", Shape: shape, DataOffsets: [2]int64{offset, offset + size}}
		offset += size
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "failed to encode checkpoint header")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create checkpoint %q", path)
	}
	w := bufio.NewWriter(f)
	err = binary.Write(w, binary.LittleEndian, uint64(len(headerJSON)))
	if err == nil {
		_, err = w.Write(headerJSON)
	}
	for _, name := range names {
		if err != nil {
			break
		}
		err = errors.Wrapf(binary.Write(w, binary.LittleEndian, stateDict[name].AsFloat32()), "tensor %q", name)
	}
	if err == nil {
		err = w.Flush()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return errors.Wrapf(err, "failed to write checkpoint %q", path)
}

// Load reads a checkpoint written by Save. Tensors are allocated on the CPU.
func Load(path string) (*Checkpoint, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read checkpoint %q", path)
	}
	if len(content) < 8 {
		return nil, errors.Wrapf(ErrInvalidCheckpoint, "%q is too small", path)
	}
	headerSize := binary.LittleEndian.Uint64(content[:8])
	if headerSize > uint64(len(content)-8) {
		return nil, errors.Wrapf(ErrInvalidCheckpoint, "%q: header size %d exceeds file size", path, headerSize)
	}
	body := content[8+headerSize:]

	var header map[string]json.RawMessage
	if err := json.Unmarshal(content[8:8+headerSize], &header); err != nil {
		return nil, errors.Wrapf(ErrInvalidCheckpoint, "%q: %v", path, err)
	}

	ckpt := &Checkpoint{Metadata: map[string]string{}, Tensors: map[string]*tensor.RawTensor{}}
	if rawMeta, ok := header[metadataKey]; ok {
		if err := json.Unmarshal(rawMeta, &ckpt.Metadata); err != nil {
			return nil, errors.Wrapf(ErrInvalidCheckpoint, "%q metadata: %v", path, err)
		}
		delete(header, metadataKey)
	}
	ckpt.ModelType = ckpt.Metadata[ModelTypeKey]

	for name, rawInfo := range header {
		var info tensorInfo
		if err := json.Unmarshal(rawInfo, &info); err != nil {
			return nil, errors.Wrapf(ErrInvalidCheckpoint, "%q tensor %q: %v", path, name, err)
		}
		raw, err := decodeTensor(info, body)
		if err != nil {
			return nil, errors.WithMessagef(err, "%q tensor %q", path, name)
		}
		ckpt.Tensors[name] = raw
	}
	return ckpt, nil
}

func decodeTensor(info tensorInfo, body []byte) (*tensor.RawTensor, error) {
	if !strings.EqualFold(info.DType, "F32") {
		return nil, errors.Wrapf(ErrInvalidCheckpoint, "unsupported dtype %s", info.DType)
	}
	shape := make(tensor.Shape, len(info.Shape))
	numElements := int64(1)
	for i, dim := range info.Shape {
		if dim < 0 {
			return nil, errors.Wrapf(ErrInvalidCheckpoint, "negative dimension in shape %v", info.Shape)
		}
		shape[i] = int(dim)
		numElements *= dim
	}
	start, end := info.DataOffsets[0], info.DataOffsets[1]
	if start < 0 || end > int64(len(body)) || end-start != 4*numElements {
		return nil, errors.Wrapf(ErrInvalidCheckpoint, "data offsets %v do not match shape %v", info.DataOffsets, info.Shape)
	}

	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	if err != nil {
		return nil, errors.Wrap(err, "failed to allocate tensor")
	}
	if err := binary.Read(bytes.NewReader(body[start:end]), binary.LittleEndian, raw.AsFloat32()); err != nil {
		return nil, errors.Wrap(err, "failed to decode tensor data")
	}
	return raw, nil
}
