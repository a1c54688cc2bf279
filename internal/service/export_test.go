package service

// Export for testing
var FormatPrice = formatPrice
var ValidateProductIDs = validateProductIDs
