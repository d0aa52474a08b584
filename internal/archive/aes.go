package archive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// WinZip AES-256, формат AE-2: salt | pvv | шифротекст | hmac.
const (
	methodWinZipAES uint16 = 99
	aesExtraID      uint16 = 0x9901
	aesVendorAE2    uint16 = 2
	aesStrength256  byte   = 3

	aesKeySize    = 32
	aesSaltSize   = 16
	aesPvvSize    = 2
	aesMacSize    = 10
	aesIterations = 1000

	aesReaderVersion uint16 = 51
	flagEncrypted    uint16 = 0x1
	flagUTF8         uint16 = 0x800
)

type aesWriter struct {
	dest   io.Writer
	stream cipher.Stream
	mac    hash.Hash
	buf    []byte
}

func newAESWriter(dest io.Writer, password string) (*aesWriter, error) {
	salt := make([]byte, aesSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("не удалось сгенерировать соль: %w", err)
	}

	dk := pbkdf2.Key([]byte(password), salt, aesIterations, 2*aesKeySize+aesPvvSize, sha1.New)
	encKey, macKey, pvv := dk[:aesKeySize], dk[aesKeySize:2*aesKeySize], dk[2*aesKeySize:]

	if _, err := dest.Write(salt); err != nil {
		return nil, err
	}
	if _, err := dest.Write(pvv); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, err
	}

	return &aesWriter{
		dest:   dest,
		stream: newWinZipCounter(block),
		mac:    hmac.New(sha1.New, macKey),
	}, nil
}

func (w *aesWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if cap(w.buf) < len(p) {
		w.buf = make([]byte, len(p))
	}
	buf := w.buf[:len(p)]

	w.stream.XORKeyStream(buf, p)
	w.mac.Write(buf)

	if _, err := w.dest.Write(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close дописывает код аутентификации. dest не закрывается.
func (w *aesWriter) Close() error {
	_, err := w.dest.Write(w.mac.Sum(nil)[:aesMacSize])
	return err
}

// aesExtra - extra-поле 0x9901 с реальным методом сжатия записи.
func aesExtra(method uint16) []byte {
	b := make([]byte, 11)
	binary.LittleEndian.PutUint16(b[0:], aesExtraID)
	binary.LittleEndian.PutUint16(b[2:], 7)
	binary.LittleEndian.PutUint16(b[4:], aesVendorAE2)
	copy(b[6:], "AE")
	b[8] = aesStrength256
	binary.LittleEndian.PutUint16(b[9:], method)
	return b
}

// winZipCounter - CTR со 128-битным little-endian счетчиком, начиная с 1.
// cipher.NewCTR использует big-endian и не подходит.
type winZipCounter struct {
	block   cipher.Block
	counter [aes.BlockSize]byte
	buffer  [aes.BlockSize]byte
	pos     int
}

func newWinZipCounter(block cipher.Block) *winZipCounter {
	c := &winZipCounter{block: block}
	c.counter[0] = 1
	return c
}

func (c *winZipCounter) XORKeyStream(dst, src []byte) {
	for i := range src {
		if c.pos == 0 {
			c.block.Encrypt(c.buffer[:], c.counter[:])
			for j := range c.counter {
				c.counter[j]++
				if c.counter[j] != 0 {
					break
				}
			}
		}
		dst[i] = src[i] ^ c.buffer[c.pos]
		c.pos = (c.pos + 1) % aes.BlockSize
	}
}
