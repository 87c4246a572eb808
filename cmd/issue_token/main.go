// issue_token emite un JWT para un operador de la bodega.
//
// Uso: go run ./cmd/issue_token -user <id> -role admin|bodeguero|consulta [-minutes 480]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/sistema-bodega/pkg/config"
	"github.com/jhoicas/sistema-bodega/pkg/jwt"
)

func main() {
	user := flag.String("user", "", "identificador del operador")
	role := flag.String("role", jwt.RoleConsulta, "rol: admin, bodeguero o consulta")
	minutes := flag.Int("minutes", 0, "vigencia en minutos (por defecto JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "-user es obligatorio")
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	exp := cfg.JWT.Expiration
	if *minutes > 0 {
		exp = *minutes
	}
	token, err := jwt.Generate(cfg.JWT.Secret, *user, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
