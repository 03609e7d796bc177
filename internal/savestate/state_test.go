package savestate

import "testing"

func TestEncodeDecodeRoundTripsEveryFieldKind(t *testing.T) {
	e := NewEncoder()
	e.Write8(0x12)
	e.Write16(0x3456)
	e.Write32(0x789ABCDE)
	e.Write64(0x0123456789ABCDEF)
	e.WriteBool(true)
	e.WriteBool(false)
	e.WriteBytes([]byte{0xAA, 0xBB, 0xCC})
	e.WriteBlob([]byte{0x01, 0x02, 0x03, 0x04, 0x05})

	d := NewDecoder(e.Bytes())
	if v := d.Read8(); v != 0x12 {
		t.Fatalf("Read8 = 0x%02X, want 0x12", v)
	}
	if v := d.Read16(); v != 0x3456 {
		t.Fatalf("Read16 = 0x%04X, want 0x3456", v)
	}
	if v := d.Read32(); v != 0x789ABCDE {
		t.Fatalf("Read32 = 0x%08X, want 0x789ABCDE", v)
	}
	if v := d.Read64(); v != 0x0123456789ABCDEF {
		t.Fatalf("Read64 = 0x%016X, want 0x0123456789ABCDEF", v)
	}
	if v := d.ReadBool(); v != true {
		t.Fatalf("ReadBool = %v, want true", v)
	}
	if v := d.ReadBool(); v != false {
		t.Fatalf("ReadBool = %v, want false", v)
	}
	raw := make([]byte, 3)
	d.ReadBytes(raw)
	if raw[0] != 0xAA || raw[1] != 0xBB || raw[2] != 0xCC {
		t.Fatalf("ReadBytes = %v, want [AA BB CC]", raw)
	}
	blob := d.ReadBlob()
	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	if len(blob) != len(want) {
		t.Fatalf("ReadBlob length = %d, want %d", len(blob), len(want))
	}
	for i := range want {
		if blob[i] != want[i] {
			t.Fatalf("ReadBlob[%d] = 0x%02X, want 0x%02X", i, blob[i], want[i])
		}
	}
	if err := d.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil after a fully consumed stream", err)
	}
}

func TestWriteBlobPrefixesALength(t *testing.T) {
	e := NewEncoder()
	e.WriteBlob([]byte{0xFF, 0xEE})
	got := e.Bytes()
	if len(got) != 4+2 {
		t.Fatalf("len(Bytes()) = %d, want 6", len(got))
	}
	d := NewDecoder(got)
	if n := d.Read32(); n != 2 {
		t.Fatalf("length prefix = %d, want 2", n)
	}
}

func TestErrReportsAnOverrun(t *testing.T) {
	e := NewEncoder()
	e.Write8(0x01)

	d := NewDecoder(e.Bytes())
	d.Read8()
	d.pos = len(d.buf) + 3 // simulate a caller reading past what was written
	if err := d.Err(); err == nil {
		t.Fatal("Err() = nil, want an overrun error")
	}
}

func TestReadingATruncatedPayloadDoesNotPanicAndSetsErr(t *testing.T) {
	d := NewDecoder([]byte{0x01, 0x02})
	if v := d.Read8(); v != 0x01 {
		t.Fatalf("Read8 = 0x%02X, want 0x01", v)
	}
	if v := d.Read32(); v != 0 {
		t.Fatalf("Read32 past the end = %d, want 0", v)
	}
	if err := d.Err(); err == nil {
		t.Fatal("Err() = nil, want an overrun error after reading past the buffer")
	}
}

func TestReadBlobOnATruncatedLengthPrefixDoesNotAllocateAndReturnsNil(t *testing.T) {
	// length prefix claims far more data than is actually present.
	d := NewDecoder([]byte{0xFF, 0xFF, 0xFF, 0x7F})
	if blob := d.ReadBlob(); blob != nil {
		t.Fatalf("ReadBlob() = %v, want nil for an over-long length prefix", blob)
	}
	if err := d.Err(); err == nil {
		t.Fatal("Err() = nil, want an overrun error")
	}
}
