package common

const (
	// PendingIDPrefix marks client-generated identifiers of placeholder items.
	// Backend identifiers never carry it.
	PendingIDPrefix = "temp-"

	// UserMetadataKey is the metadata key holding the persisted user record.
	UserMetadataKey = "user"

	// JPEGDataURIPrefix is prepended to base64 image payloads sent for enrichment.
	JPEGDataURIPrefix = "data:image/jpeg;base64,"
)
