package inject

import (
	"time"

	"github.com/micmonay/keybd_event"
)

// The uinput device needs time to be picked up by the compositor before
// its first keystroke is delivered.
const keyboardInitDelay = 2 * time.Second

func setPasteModifier(k *keybd_event.KeyBonding) {
	k.HasCTRL(true)
}
