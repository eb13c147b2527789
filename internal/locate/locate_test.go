package locate

import (
	"errors"
	"net"
	"path/filepath"
	"testing"
)

func TestStatic(t *testing.T) {
	s := Static{"192.0.2.1": {52.376514, 4.908542}}
	lat, lon, err := s.Locate(net.ParseIP("192.0.2.1"))
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if lat != 52.376514 || lon != 4.908542 {
		t.Errorf("Locate = (%v, %v)", lat, lon)
	}
	if _, _, err := s.Locate(net.ParseIP("192.0.2.2")); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown address error = %v, want ErrNotFound", err)
	}
	if _, _, err := s.Locate(nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("nil address error = %v, want ErrNotFound", err)
	}
}

func TestOpenMissingDatabase(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.mmdb")); err == nil {
		t.Error("Open of a missing file should fail")
	}
}
