package internal

// Version is the accentcoach release version
const Version = "0.3.0"
