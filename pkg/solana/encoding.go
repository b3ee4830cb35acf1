package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/pkg/errors"

	"github.com/code-payments/serum-swap-relay/pkg/solana/shortvec"
)

// Marshal encodes the transaction in the legacy wire format: a compact-u16
// signature count, the signatures, then the message.
func (t Transaction) Marshal() []byte {
	b := bytes.NewBuffer(nil)

	_, _ = shortvec.EncodeLen(b, len(t.Signatures))
	for _, s := range t.Signatures {
		_, _ = b.Write(s[:])
	}

	_, _ = b.Write(t.Message.Marshal())

	return b.Bytes()
}

func (t *Transaction) Unmarshal(b []byte) error {
	d := newDecoder(b)

	sigLen, err := d.readLen("signatures")
	if err != nil {
		return err
	}

	t.Signatures = make([]Signature, sigLen)
	for i := range t.Signatures {
		if err := d.read(t.Signatures[i][:], "signature %d", i); err != nil {
			return err
		}
	}

	return t.Message.Unmarshal(d.remaining())
}

// Marshal encodes the message bytes that are signed.
func (m Message) Marshal() []byte {
	b := bytes.NewBuffer(nil)

	_, _ = b.Write([]byte{m.Header.NumSignatures, m.Header.NumReadonlySigned, m.Header.NumReadOnly})

	_, _ = shortvec.EncodeLen(b, len(m.Accounts))
	for _, a := range m.Accounts {
		_, _ = b.Write(a)
	}

	_, _ = b.Write(m.RecentBlockhash[:])

	_, _ = shortvec.EncodeLen(b, len(m.Instructions))
	for _, i := range m.Instructions {
		_ = b.WriteByte(i.ProgramIndex)
		writeVec(b, i.Accounts)
		writeVec(b, i.Data)
	}

	return b.Bytes()
}

func (m *Message) Unmarshal(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty message")
	}
	if b[0]&0x80 != 0 {
		return errors.New("versioned messages not supported")
	}

	d := newDecoder(b)

	var header [3]byte
	if err := d.read(header[:], "message header"); err != nil {
		return err
	}
	m.Header = Header{
		NumSignatures:     header[0],
		NumReadonlySigned: header[1],
		NumReadOnly:       header[2],
	}

	accountLen, err := d.readLen("accounts")
	if err != nil {
		return err
	}
	m.Accounts = make([]ed25519.PublicKey, accountLen)
	for i := range m.Accounts {
		m.Accounts[i] = make(ed25519.PublicKey, ed25519.PublicKeySize)
		if err := d.read(m.Accounts[i], "account %d", i); err != nil {
			return err
		}
	}

	if err := d.read(m.RecentBlockhash[:], "recent blockhash"); err != nil {
		return err
	}

	instructionLen, err := d.readLen("instructions")
	if err != nil {
		return err
	}
	m.Instructions = make([]CompiledInstruction, instructionLen)
	for i := range m.Instructions {
		c := &m.Instructions[i]

		if c.ProgramIndex, err = d.readByte("instruction %d program index", i); err != nil {
			return err
		}
		if int(c.ProgramIndex) >= len(m.Accounts) {
			return errors.Errorf("program index out of range: %d:%d", i, c.ProgramIndex)
		}

		if c.Accounts, err = d.readVec("instruction %d accounts", i); err != nil {
			return err
		}
		for _, index := range c.Accounts {
			if int(index) >= len(m.Accounts) {
				return errors.Errorf("account index out of range: %d:%d", i, index)
			}
		}

		if c.Data, err = d.readVec("instruction %d data", i); err != nil {
			return err
		}
	}

	return nil
}

func writeVec(b *bytes.Buffer, v []byte) {
	_, _ = shortvec.EncodeLen(b, len(v))
	_, _ = b.Write(v)
}

// decoder reads wire fields, naming the field in any read error.
type decoder struct {
	buf *bytes.Buffer
}

func newDecoder(b []byte) *decoder {
	return &decoder{buf: bytes.NewBuffer(b)}
}

func (d *decoder) readByte(format string, args ...interface{}) (byte, error) {
	v, err := d.buf.ReadByte()
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read "+format, args...)
	}
	return v, nil
}

func (d *decoder) read(dst []byte, format string, args ...interface{}) error {
	if _, err := io.ReadFull(d.buf, dst); err != nil {
		return errors.Wrapf(err, "failed to read "+format, args...)
	}
	return nil
}

func (d *decoder) readLen(format string, args ...interface{}) (int, error) {
	n, err := shortvec.DecodeLen(d.buf)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read "+format+" length", args...)
	}
	return n, nil
}

func (d *decoder) readVec(format string, args ...interface{}) ([]byte, error) {
	n, err := d.readLen(format, args...)
	if err != nil {
		return nil, err
	}

	v := make([]byte, n)
	return v, d.read(v, format, args...)
}

func (d *decoder) remaining() []byte {
	return d.buf.Bytes()
}
