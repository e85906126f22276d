package passbook

import (
	"testing"

	"github.com/adrive/adrive-sync/internal/constants"
	"github.com/adrive/adrive-sync/internal/synerr"
)

func TestCreateThenCheckRoundTrip(t *testing.T) {
	passwordInput := []byte("hunter2")

	syncPassword, raw, err := CreatePassword(passwordInput)
	if err != nil {
		t.Fatalf("CreatePassword() failed: %v", err)
	}
	if len(syncPassword) != constants.SyncPasswordLength {
		t.Errorf("expected sync password length %d, got %d", constants.SyncPasswordLength, len(syncPassword))
	}

	got, err := CheckPassword(raw, passwordInput)
	if err != nil {
		t.Fatalf("CheckPassword() failed: %v", err)
	}
	if string(got) != string(syncPassword) {
		t.Error("CheckPassword did not return the password generated by CreatePassword")
	}
}

func TestCheckPasswordWrongInput(t *testing.T) {
	_, raw, err := CreatePassword([]byte("correct-password"))
	if err != nil {
		t.Fatalf("CreatePassword() failed: %v", err)
	}

	_, err = CheckPassword(raw, []byte("wrong-password"))
	if err == nil {
		t.Fatal("expected CheckPassword to fail for the wrong password")
	}
	if kind, ok := synerr.KindOf(err); !ok || kind != synerr.Password {
		t.Errorf("expected a synerr.Password error, got %v (ok=%v)", err, ok)
	}
}

func TestUnmarshalMalformedTOML(t *testing.T) {
	if _, err := Unmarshal([]byte("not = [valid")); err == nil {
		t.Error("expected Unmarshal to fail on malformed TOML")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	want := File{KeyEncrypted: "abc", TestEncrypted: "def"}
	raw, err := Marshal(want)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	got, err := Unmarshal(raw)
	if err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if got != want {
		t.Errorf("Unmarshal(Marshal(f)) = %+v, want %+v", got, want)
	}
}
