package domain

import (
	"bytes"
	"encoding/json"
)

type Volume string

const (
	Volume330ML  Volume = "330ML"
	Volume500ML  Volume = "500ML"
	Volume1L     Volume = "1L"
	Volume1_5L   Volume = "1,5L"
	VolumeAbsent Volume = ""
)

type Container string

const (
	ContainerCan    Container = "Blikje"
	ContainerBottle Container = "Flesje"
	ContainerAbsent Container = ""
)

// ChangeKind names the mutation that produced an order change
type ChangeKind string

const (
	ChangeVolumeSelected    ChangeKind = "volume_selected"
	ChangeVolumeCleared     ChangeKind = "volume_cleared"
	ChangeContainerSelected ChangeKind = "container_selected"
	ChangeFlavorAdded       ChangeKind = "flavor_added"
	ChangeFlavorRemoved     ChangeKind = "flavor_removed"
	ChangeQuantityChanged   ChangeKind = "quantity_changed"
)

var jsonNull = []byte("null")

func (v Volume) MarshalJSON() ([]byte, error) {
	return marshalLabel(string(v))
}

func (v *Volume) UnmarshalJSON(data []byte) error {
	s, err := unmarshalLabel(data)
	if err != nil {
		return err
	}
	*v = Volume(s)
	return nil
}

func (c Container) MarshalJSON() ([]byte, error) {
	return marshalLabel(string(c))
}

func (c *Container) UnmarshalJSON(data []byte) error {
	s, err := unmarshalLabel(data)
	if err != nil {
		return err
	}
	*c = Container(s)
	return nil
}

// Absent labels are stored as null so the stored document matches what the page wrote.
func marshalLabel(s string) ([]byte, error) {
	if s == "" {
		return jsonNull, nil
	}
	return json.Marshal(s)
}

func unmarshalLabel(data []byte) (string, error) {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", err
	}
	return s, nil
}
