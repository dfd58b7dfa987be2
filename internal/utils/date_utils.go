package utils

import "time"

// GetMexicoLocation regresa la zona horaria de Ciudad de México. Todas las
// operaciones de fecha del proyecto usan esta función para mantener
// consistencia en buckets diarios y rangos de consulta.
func GetMexicoLocation() *time.Location {
	mexicoLocation, err := time.LoadLocation("America/Mexico_City")
	if err != nil {
		// Fallback a UTC-6 si no se puede cargar la zona
		mexicoLocation = time.FixedZone("CST", -6*60*60)
	}
	return mexicoLocation
}
