package buffers

import (
	"testing"

	"github.com/adrive/adrive-sync/internal/constants"
)

func TestPlaintextBufferPool(t *testing.T) {
	buf := GetPlaintextBuffer()
	if buf == nil {
		t.Fatal("GetPlaintextBuffer returned nil")
	}
	if len(*buf) != constants.PlaintextChunkSize {
		t.Errorf("buffer size = %d, want %d", len(*buf), constants.PlaintextChunkSize)
	}
	PutPlaintextBuffer(buf)

	buf2 := GetPlaintextBuffer()
	if buf2 == nil {
		t.Fatal("GetPlaintextBuffer returned nil on second call")
	}
	PutPlaintextBuffer(buf2)
}

func TestCiphertextBufferPool(t *testing.T) {
	buf := GetCiphertextBuffer()
	if buf == nil {
		t.Fatal("GetCiphertextBuffer returned nil")
	}
	if len(*buf) != constants.CiphertextChunkSize {
		t.Errorf("buffer size = %d, want %d", len(*buf), constants.CiphertextChunkSize)
	}
	PutCiphertextBuffer(buf)

	buf2 := GetCiphertextBuffer()
	if buf2 == nil {
		t.Fatal("GetCiphertextBuffer returned nil on second call")
	}
	PutCiphertextBuffer(buf2)
}

func TestPutWrongSizeBufferIsIgnored(t *testing.T) {
	wrongSize := make([]byte, 1024)
	PutPlaintextBuffer(&wrongSize)
	PutCiphertextBuffer(&wrongSize)
}

func TestPutNilBuffer(t *testing.T) {
	PutPlaintextBuffer(nil)
	PutCiphertextBuffer(nil)
}

func TestConcurrentAccess(t *testing.T) {
	const goroutines = 10
	const iterations = 50

	done := make(chan bool, goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			for j := 0; j < iterations; j++ {
				pbuf := GetPlaintextBuffer()
				(*pbuf)[0] = byte(j)
				PutPlaintextBuffer(pbuf)

				cbuf := GetCiphertextBuffer()
				(*cbuf)[0] = byte(j)
				PutCiphertextBuffer(cbuf)
			}
			done <- true
		}()
	}

	for i := 0; i < goroutines; i++ {
		<-done
	}
}
