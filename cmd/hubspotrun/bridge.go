package main

import (
	"strings"

	"github.com/loykin/hubspotrun/internal/bridge"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Count, retrieve or search HubSpot CRM records",
}

var bridgeCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count records matching a query",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, req, err := bridgeSetup(cmd)
		if err != nil {
			return err
		}
		n, err := a.Count(commandContext(cmd), req)
		if err != nil {
			return err
		}
		return writeJSON(cmd, map[string]int{"count": n})
	},
}

var bridgeRetrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Retrieve the single record matching a query",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, req, err := bridgeSetup(cmd)
		if err != nil {
			return err
		}
		rec, err := a.Retrieve(commandContext(cmd), req)
		if err != nil {
			return err
		}
		return writeJSON(cmd, map[string]interface{}{"record": rec})
	},
}

var bridgeSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search records matching a query, one page at a time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, req, err := bridgeSetup(cmd)
		if err != nil {
			return err
		}
		list, err := a.Search(commandContext(cmd), req)
		if err != nil {
			return err
		}
		return writeJSON(cmd, map[string]interface{}{
			"fields":   list.Fields,
			"records":  list.Records,
			"metadata": list.Metadata,
		})
	},
}

func initBridgeFlags() {
	v := viper.GetViper()
	f := bridgeCmd.PersistentFlags()
	f.String("structure", "", "structure to query: Companies, Contacts, Tickets or Adhoc")
	f.String("query", "", `query, e.g. id=<%=parameter["Id"]%> or body={...}`)
	f.StringSlice("field", nil, "field to return; repeat for several ($.json.path supported)")
	f.StringToString("param", nil, "request parameter substituted into the query (name=value)")
	f.String("page", "", "page token from a previous search (next_page)")
	f.String("order", "", `sort order, e.g. <%=field["$.properties.subject"]%>:ASC`)
	_ = v.BindPFlag("structure", f.Lookup("structure"))
	_ = v.BindPFlag("query", f.Lookup("query"))
	_ = v.BindPFlag("fields", f.Lookup("field"))
	_ = v.BindPFlag("params", f.Lookup("param"))
	_ = v.BindPFlag("page", f.Lookup("page"))
	_ = v.BindPFlag("order", f.Lookup("order"))

	bridgeCmd.AddCommand(bridgeCountCmd)
	bridgeCmd.AddCommand(bridgeRetrieveCmd)
	bridgeCmd.AddCommand(bridgeSearchCmd)
}

func bridgeSetup(cmd *cobra.Command) (*bridge.Adapter, bridge.Request, error) {
	doc, err := loadConfig()
	if err != nil {
		return nil, bridge.Request{}, err
	}
	if err := doc.SetupLogging(); err != nil {
		return nil, bridge.Request{}, err
	}
	client, err := doc.HTTPClient()
	if err != nil {
		return nil, bridge.Request{}, err
	}

	a, err := bridge.New(commandContext(cmd), bridge.Config{
		APILocation: viper.GetString("api_location"),
		APIKey:      viper.GetString("api_key"),
		Auth:        doc.Auth,
		Env:         doc.GetEnv(),
		Client:      client,
	})
	if err != nil {
		return nil, bridge.Request{}, err
	}

	meta := map[string]string{}
	if p := strings.TrimSpace(viper.GetString("page")); p != "" {
		meta["page"] = p
	}
	if o := strings.TrimSpace(viper.GetString("order")); o != "" {
		meta["order"] = o
	}
	req := bridge.Request{
		Structure:  viper.GetString("structure"),
		Query:      viper.GetString("query"),
		Fields:     viper.GetStringSlice("fields"),
		Parameters: viper.GetStringMapString("params"),
		Metadata:   meta,
	}
	return a, req, nil
}
