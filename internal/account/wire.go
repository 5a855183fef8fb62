package account

import (
	"google.golang.org/protobuf/encoding/protowire"

	verrors "mangavault/pkg/errors"
)

// Wire field numbers for the on-disk account record. Hand-rolled instead
// of protoc-generated: the schema is small, stable, and internal to this
// module, so a generated .pb.go would be pure overhead.
const (
	fieldID          = protowire.Number(1)
	fieldVendor      = protowire.Number(2)
	fieldEmail       = protowire.Number(3)
	fieldDeviceTag   = protowire.Number(4)
	fieldCreatedAt   = protowire.Number(5)
	fieldTokenExpiry = protowire.Number(6)
	fieldPayload     = protowire.Number(7)
)

// MarshalWire encodes acc as a flat sequence of length-delimited/varint
// protowire fields.
func (acc Account) MarshalWire() []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, fieldID, protowire.BytesType)
	buf = protowire.AppendString(buf, acc.ID)

	buf = protowire.AppendTag(buf, fieldVendor, protowire.BytesType)
	buf = protowire.AppendString(buf, acc.Vendor)

	buf = protowire.AppendTag(buf, fieldEmail, protowire.BytesType)
	buf = protowire.AppendString(buf, acc.Email)

	buf = protowire.AppendTag(buf, fieldDeviceTag, protowire.BytesType)
	buf = protowire.AppendString(buf, acc.DeviceTag)

	buf = protowire.AppendTag(buf, fieldCreatedAt, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(acc.CreatedAt.Unix()))

	buf = protowire.AppendTag(buf, fieldTokenExpiry, protowire.VarintType)
	expiry := int64(0)
	if !acc.TokenExpiry.IsZero() {
		expiry = acc.TokenExpiry.Unix()
	}
	buf = protowire.AppendVarint(buf, uint64(expiry))

	buf = protowire.AppendTag(buf, fieldPayload, protowire.BytesType)
	buf = protowire.AppendBytes(buf, acc.Payload)

	return buf
}

// UnmarshalWire decodes a record previously produced by MarshalWire.
func (acc *Account) UnmarshalWire(data []byte) error {
	var createdAt, expiry int64

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return verrors.ErrAccountCorrupt.Wrap(protowire.ParseError(n))
		}
		data = data[n:]

		switch typ {
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return verrors.ErrAccountCorrupt.Wrap(protowire.ParseError(m))
			}
			data = data[m:]

			switch num {
			case fieldID:
				acc.ID = string(v)
			case fieldVendor:
				acc.Vendor = string(v)
			case fieldEmail:
				acc.Email = string(v)
			case fieldDeviceTag:
				acc.DeviceTag = string(v)
			case fieldPayload:
				acc.Payload = append([]byte(nil), v...)
			default:
				// unknown field, ignore for forward compatibility
			}
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return verrors.ErrAccountCorrupt.Wrap(protowire.ParseError(m))
			}
			data = data[m:]

			switch num {
			case fieldCreatedAt:
				createdAt = int64(v)
			case fieldTokenExpiry:
				expiry = int64(v)
			}
		default:
			return verrors.ErrAccountCorrupt.WithDetails("wire_type", typ)
		}
	}

	acc.CreatedAt = unixOrZero(createdAt)
	acc.TokenExpiry = unixOrZero(expiry)

	return nil
}
