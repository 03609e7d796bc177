package cartridge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pinwheel/gbcore/internal/savestate"
)

// markedROM returns a ROM with numBanks 16KB banks, each bank's first
// byte set to its own bank index so reads can be identified.
func markedROM(numBanks int) *Rom {
	data := make([]byte, numBanks*0x4000)
	for i := 0; i < numBanks; i++ {
		data[i*0x4000] = byte(i)
	}
	return &Rom{Header: &Header{RAMSize: 0x2000}, Data: data}
}

func TestMBC1Bank0IsAlwaysMappedAtTheLowWindow(t *testing.T) {
	m := newMBC1(markedROM(8), nil)
	require.Equal(t, uint8(0), m.Read(0x0000))
}

func TestMBC1SwitchesTheHighWindowByBank1(t *testing.T) {
	m := newMBC1(markedROM(8), nil)
	m.Write(0x2000, 0x05) // select ROM bank 5
	require.Equal(t, uint8(5), m.Read(0x4000))
}

func TestMBC1CoercesBank1ZeroToOne(t *testing.T) {
	m := newMBC1(markedROM(8), nil)
	m.Write(0x2000, 0x00)
	require.Equal(t, uint8(1), m.Read(0x4000))
}

func TestMBC1Bank2ExtendsTheHighWindowBeyondFiveBits(t *testing.T) {
	m := newMBC1(markedROM(64), nil) // 64 banks needs bank1(5 bits) + bank2(2 bits)
	m.Write(0x2000, 0x1F)            // bank1 = 31 (max 5-bit value)
	m.Write(0x4000, 0x01)            // bank2 = 1 -> bank = 31 | (1<<5) = 63
	require.Equal(t, uint8(63), m.Read(0x4000))
}

func TestMBC1RAMIsDisabledByDefault(t *testing.T) {
	m := newMBC1(markedROM(2), nil)
	m.Write(0xA000, 0x42)
	require.Equal(t, uint8(0xFF), m.Read(0xA000))
}

func TestMBC1RAMEnableUnlocksReadWrite(t *testing.T) {
	m := newMBC1(markedROM(2), nil)
	m.Write(0x0000, 0x0A) // any value with low nibble 0xA enables RAM
	m.Write(0xA000, 0x42)
	require.Equal(t, uint8(0x42), m.Read(0xA000))
}

func TestMBC1ModeOneSwitchesRAMBanksViaBank2(t *testing.T) {
	m := newMBC1(markedROM(2), nil)
	m.ram = make([]byte, 4*0x2000) // 4 RAM banks for this test
	m.Write(0x0000, 0x0A)          // enable RAM
	m.Write(0x6000, 0x01)          // advanced banking mode
	m.Write(0x4000, 0x02)          // bank2 = 2 -> ram bank 2
	m.Write(0xA000, 0x77)
	require.Equal(t, uint8(0x77), m.ram[2*0x2000])

	m.Write(0x4000, 0x00) // switch back to ram bank 0, never written
	require.Equal(t, uint8(0x00), m.Read(0xA000))
}

func TestMBC1SaveLoadRoundTripsRegistersAndRAM(t *testing.T) {
	m := newMBC1(markedROM(8), nil)
	m.Write(0x0000, 0x0A)
	m.Write(0x2000, 0x03)
	m.Write(0x4000, 0x01)
	m.Write(0xA000, 0x55)

	e := savestate.NewEncoder()
	m.Save(e)

	loaded := newMBC1(markedROM(8), nil)
	loaded.Load(savestate.NewDecoder(e.Bytes()))
	require.Equal(t, m.ramEnable, loaded.ramEnable)
	require.Equal(t, m.bank1, loaded.bank1)
	require.Equal(t, m.bank2, loaded.bank2)
	require.Equal(t, m.mode, loaded.mode)
	require.Equal(t, m.ram, loaded.ram)
}
