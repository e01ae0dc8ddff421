// Package calltable is the fixed table of native operations scripts call
// back into.
//
// Each Op has one typed slot. The engine fills the slots once through
// Initialize (or Bind followed by Seal); afterwards the table is read-only
// and safe for concurrent readers. Invoking an operation whose slot was
// never bound returns errors.ErrUnbound and performs no native call, so a
// partially completed handshake is reported rather than crashing.
//
// Strings are converted to UTF-16 code units at this layer. Getters return
// copies, and out-parameters point at values that only live for the duration
// of the call.
package calltable
