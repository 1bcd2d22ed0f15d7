package email

var SanitizeFilename = sanitizeFilename
