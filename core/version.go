package core

// Version is reported in the User-Agent header of every API request.
const Version = "1.0.0"
