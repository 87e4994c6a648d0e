package common

// Literal replies the server sends instead of a session secret when the
// handshake cannot proceed.
const (
	ReplyInvalidPassword = "Invalid Password!"
	ReplyInvalidClient   = "Invalid Client!"
)

// Plain status replies for envelopes that do not carry data back.
const (
	ReplyOK           = "Ok"
	ReplyDisconnected = "Disconnected"
)

// AppDirName is the directory created under the user's config dir.
const AppDirName = "Matthias"

// AccountFileExt is the extension of encrypted account files.
const AccountFileExt = ".szch"
