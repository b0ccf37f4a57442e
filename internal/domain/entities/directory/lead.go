// Package directory defines the customer circuit directory domain entities.
package directory

// Lead represents a customer circuit record. Leads are created by the import
// process or administrative entry and are effectively immutable afterwards;
// the circuit code (Ckt) uniquely identifies a lead within the active
// collection.
type Lead struct {
	SrNo            string `json:"sr_no"`
	Ckt             string `json:"ckt"`
	CustName        string `json:"cust_name"`
	Address         string `json:"address"`
	EmailID         string `json:"email_id"`
	ContactName     string `json:"contact_name"`
	CommDate        string `json:"comm_date"`
	UsableIPAddress string `json:"usable_ip_address"`
	Backup          string `json:"backup"`
	Device          string `json:"device"`
	Bandwidth       string `json:"bandwidth"`
	Remarks         string `json:"remarks"`

	// Secondary network attributes for the primary and backup POP. Optional
	// on the wire; missing values match as empty strings during search.
	PopName     *string `json:"pop_name,omitempty"`
	NasIP1      *string `json:"nas_ip_1,omitempty"`
	SwitchIP1   *string `json:"switch_ip_1,omitempty"`
	PortNo1     *string `json:"port_no_1,omitempty"`
	VlanID1     *string `json:"vlan_id_1,omitempty"`
	PrimaryPop  *string `json:"primary_pop,omitempty"`
	PopName2    *string `json:"pop_name_2,omitempty"`
	NasIP2      *string `json:"nas_ip_2,omitempty"`
	SwitchIP2   *string `json:"switch_ip_2,omitempty"`
	PortNo2     *string `json:"port_no_2,omitempty"`
	VlanID2     *string `json:"vlan_id_2,omitempty"`
	SubnetMask  *string `json:"subnet_mask,omitempty"`
	Gateway     *string `json:"gateway,omitempty"`
	SalesPerson *string `json:"sales_person,omitempty"`
	TestingFe   *string `json:"testing_fe,omitempty"`
	Mrtg        *string `json:"mrtg,omitempty"`
}
