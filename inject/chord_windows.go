package inject

import "github.com/micmonay/keybd_event"

const keyboardInitDelay = 0

func setPasteModifier(k *keybd_event.KeyBonding) {
	k.HasCTRL(true)
}
