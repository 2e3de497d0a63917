package httpc

import (
	"testing"
	"time"
)

func TestNewClientTimeout(t *testing.T) {
	if c := NewClient(0); c.Timeout != DefaultTimeout {
		t.Errorf("zero timeout should fall back to %v, got %v", DefaultTimeout, c.Timeout)
	}
	if c := NewClient(5 * time.Second); c.Timeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", c.Timeout)
	}
}

func TestNewTransport(t *testing.T) {
	tr := NewTransport()
	if tr.Proxy == nil {
		t.Error("proxy from environment should be honored")
	}
	if tr.TLSHandshakeTimeout == 0 || tr.IdleConnTimeout != DefaultIdleConnTimeout {
		t.Errorf("unexpected transport timeouts: %+v", tr)
	}
}
