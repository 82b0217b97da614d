package model

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"net/http"
	"sort"
)

// Response is the record yielded by the transport and kept by the cache.
// Memory keeps the live value; disk keeps whatever the Serializer produces.
type Response struct {
	StatusCode   int
	Body         []byte
	Header       http.Header
	Request      *http.Request
	HTTPResponse *http.Response
}

// Cost is the memory budget weight of the response.
func (r *Response) Cost() int64 {
	if r == nil {
		return 0
	}
	return int64(len(r.Body))
}

// Serializer converts a response to and from the bytes persisted on disk.
type Serializer interface {
	Serialize(resp *Response) ([]byte, error)
	Deserialize(statusCode int, data []byte, req *http.Request, raw *http.Response) (*Response, error)
}

// BodySerializer persists the body only; restored responses carry the given status code.
type BodySerializer struct{}

func (BodySerializer) Serialize(resp *Response) ([]byte, error) {
	if resp == nil {
		return nil, nil
	}
	return resp.Body, nil
}

func (BodySerializer) Deserialize(statusCode int, data []byte, req *http.Request, raw *http.Response) (*Response, error) {
	return &Response{StatusCode: statusCode, Body: data, Request: req, HTTPResponse: raw}, nil
}

var (
	errEnvelopeTruncated = errors.New("envelope truncated")
	errEnvelopeChecksum  = errors.New("envelope checksum mismatch")
)

// EnvelopeSerializer persists status, headers and body in a checksummed binary frame:
//
//	status u32 | headers u32 | (key, values u32, value...)* | body | crc32 u32
//
// Strings and the body are u32 length-prefixed, little endian.
type EnvelopeSerializer struct{}

func (EnvelopeSerializer) Serialize(resp *Response) ([]byte, error) {
	if resp == nil || len(resp.Body) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	putU32(&buf, uint32(resp.StatusCode))

	keys := make([]string, 0, len(resp.Header))
	for k := range resp.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	putU32(&buf, uint32(len(keys)))
	for _, k := range keys {
		putBytes(&buf, []byte(k))
		values := resp.Header[k]
		putU32(&buf, uint32(len(values)))
		for _, v := range values {
			putBytes(&buf, []byte(v))
		}
	}
	putBytes(&buf, resp.Body)
	putU32(&buf, crc32.ChecksumIEEE(buf.Bytes()))

	return buf.Bytes(), nil
}

func (EnvelopeSerializer) Deserialize(_ int, data []byte, req *http.Request, raw *http.Response) (*Response, error) {
	if len(data) < 4 {
		return nil, errEnvelopeTruncated
	}
	payload, sum := data[:len(data)-4], binary.LittleEndian.Uint32(data[len(data)-4:])
	if crc32.ChecksumIEEE(payload) != sum {
		return nil, errEnvelopeChecksum
	}

	r := envelopeReader{b: payload}
	status := r.u32()
	header := make(http.Header)
	for n := r.u32(); n > 0 && r.err == nil; n-- {
		key := string(r.bytes())
		for vn := r.u32(); vn > 0 && r.err == nil; vn-- {
			header[key] = append(header[key], string(r.bytes()))
		}
	}
	body := r.bytes()
	if r.err != nil {
		return nil, r.err
	}

	return &Response{StatusCode: int(status), Body: body, Header: header, Request: req, HTTPResponse: raw}, nil
}

func putU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putBytes(buf *bytes.Buffer, p []byte) {
	putU32(buf, uint32(len(p)))
	buf.Write(p)
}

type envelopeReader struct {
	b   []byte
	err error
}

func (r *envelopeReader) u32() uint32 {
	if r.err != nil {
		return 0
	}
	if len(r.b) < 4 {
		r.err = errEnvelopeTruncated
		return 0
	}
	v := binary.LittleEndian.Uint32(r.b[:4])
	r.b = r.b[4:]
	return v
}

func (r *envelopeReader) bytes() []byte {
	n := r.u32()
	if r.err != nil {
		return nil
	}
	if uint32(len(r.b)) < n {
		r.err = errEnvelopeTruncated
		return nil
	}
	p := make([]byte, n)
	copy(p, r.b[:n])
	r.b = r.b[n:]
	return p
}
