package gin

var DetermineAllowedOrigin = determineAllowedOrigin
