package http

// Export for testing
var RegisterStatic = registerStatic
var IsReservedPath = isReservedPath
