package rest

/**
 * Environment variables
 */

// REST server env names
const RestHostEnvName = "ALLOCATOR_REST_HOST"
const RestPortEnvName = "ALLOCATOR_REST_PORT"

/**
 * Parameters
 */

// default REST server bind address
const DefaultRestHost = "0.0.0.0"
const DefaultRestPort = "8081"
