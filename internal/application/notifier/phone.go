package notifier

import "strings"

// Contrato del proveedor para números mexicanos: los envíos móviles van
// con lada de país 52 más el indicador móvil 1 (prefijo 521).
const (
	countryCode  = "52"
	mobilePrefix = "521"
)

// NormalizePhone convierte un teléfono crudo al formato internacional que
// espera el proveedor. Función pura y total: una forma no reconocida se
// regresa tal cual y el proveedor la rechazará (falla esperada, no pánico).
//
//	"55 1234 5678"   -> "5215512345678"
//	"525512345678"   -> "5215512345678"
//	"5215512345678"  -> "5215512345678" (idempotente)
func NormalizePhone(raw string) string {
	digits := keepDigits(raw)

	switch {
	case len(digits) == 10:
		// Número nacional a 10 dígitos
		return mobilePrefix + digits
	case len(digits) == 12 && strings.HasPrefix(digits, countryCode):
		// Con lada de país pero sin indicador móvil: insertarlo
		return countryCode + "1" + digits[len(countryCode):]
	default:
		// Ya normalizado o número extranjero
		return digits
	}
}

func keepDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DedupePhones normaliza y deduplica listas de destinos conservando el
// orden de llegada. Así ningún destinatario recibe el mismo evento dos
// veces aunque esté configurado en la encuesta y en el negocio.
func DedupePhones(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var result []string
	for _, list := range lists {
		for _, raw := range list {
			phone := NormalizePhone(raw)
			if phone == "" {
				continue
			}
			if _, dup := seen[phone]; dup {
				continue
			}
			seen[phone] = struct{}{}
			result = append(result, phone)
		}
	}
	return result
}
