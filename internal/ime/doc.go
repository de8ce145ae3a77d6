// Package ime is the vnkey engine facade.
//
// A platform front end (IBus, TSF, IMK) owns the keyboard hook and the
// text injector; it hands every key to Engine.HandleKey and applies the
// returned Result to the focused field:
//
//	Key Event → Engine.HandleKey → Result{Backspaces, Text, PassThrough}
//	                 ↓
//	  session state machine + restore pipeline
//	                 ↓
//	  English / Vietnamese tries, custom overlay, macros
//
// Keystrokes are serialized through one mutex. Dictionaries sit behind
// atomic pointers and are swapped in by loads that run outside the
// keystroke path: at startup (LoadDictionaries) and when a watched file
// changes (WatchDictionaries). A load that fails keeps the dictionary
// that was already in place.
//
// Engine operations never return errors to the keystroke source. Load
// operations report success as a bool and log the cause.
package ime
