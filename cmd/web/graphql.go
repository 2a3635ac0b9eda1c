package main

import (
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/mailvet/mailvet/cmd/web/services"
	"github.com/mailvet/mailvet/validator"
)

// NewGraphQLSchema builds the query schema. checkMX and checkDomain are the configured probe
// defaults, clients can skip an enabled probe but can't enable a disabled one.
func NewGraphQLSchema(checkSvc *services.CheckSvc, checkMX, checkDomain bool) (graphql.Schema, error) {

	verificationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "verification",
		Fields: graphql.Fields{
			"email": &graphql.Field{
				Description: "The address the verdict applies to",
				Type:        graphql.NewNonNull(graphql.String),
			},
			"validFormat": &graphql.Field{
				Description: "Whether the address passed the format check",
				Type:        graphql.NewNonNull(graphql.Boolean),
			},
			"hasMX": &graphql.Field{
				Description: "Whether the domain publishes MX records. Null when the check was skipped.",
				Type:        graphql.Boolean,
			},
			"domainExists": &graphql.Field{
				Description: "Whether the domain resolves to an address. Null when the check was skipped.",
				Type:        graphql.Boolean,
			},
			"status": &graphql.Field{
				Description: "The verdict: valid, doubtful or invalid",
				Type:        graphql.NewNonNull(graphql.String),
			},
			"alternative": &graphql.Field{
				Description: "A likely intended address, when one was requested and found",
				Type:        graphql.String,
			},
			"cacheTtlSec": &graphql.Field{
				Description: "Remaining cache TTL in seconds, 0 on a live check",
				Type:        graphql.NewNonNull(graphql.Int),
			},
		},
	})

	fields := graphql.Fields{
		"check": &graphql.Field{
			Type: verificationType,
			Args: graphql.FieldConfigArgument{
				"email": &graphql.ArgumentConfig{
					Type:        graphql.NewNonNull(graphql.String),
					Description: "The e-mail address to verify",
				},
				"skipMX": &graphql.ArgumentConfig{
					Type:         graphql.Boolean,
					DefaultValue: false,
					Description:  "Skip the MX record lookup",
				},
				"skipDomain": &graphql.ArgumentConfig{
					Type:         graphql.Boolean,
					DefaultValue: false,
					Description:  "Skip the domain existence lookup",
				},
				"alternatives": &graphql.ArgumentConfig{
					Type:         graphql.Boolean,
					DefaultValue: false,
					Description:  "Suggest a likely intended address when the verdict isn't valid",
				},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				value, ok := p.Args["email"]
				if !ok {
					return nil, errors.New("missing required parameters")
				}

				req := validator.Request{
					Email:       value.(string),
					CheckMX:     checkMX && !p.Args["skipMX"].(bool),
					CheckDomain: checkDomain && !p.Args["skipDomain"].(bool),
				}

				result, err := checkSvc.HandleCheckRequest(p.Context, req, p.Args["alternatives"].(bool))
				if err != nil {
					return nil, err
				}

				out := map[string]interface{}{
					"email":       result.Result.Email,
					"validFormat": result.Result.ValidFormat,
					"status":      result.Result.Status.String(),
					"alternative": result.Alternative,
					"cacheTtlSec": int(result.CacheHitTTL.Seconds()),
				}

				if v, known := result.Result.HasMX.Bool(); known {
					out["hasMX"] = v
				}

				if v, known := result.Result.DomainExists.Bool(); known {
					out["domainExists"] = v
				}

				return out, nil
			},
			Description: "Verify a single e-mail address",
		},
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "RootQuery",
			Fields: fields,
		}),
	})
}
