package document

// signedProposalTemplate is the built-in HTML template for the signed
// proposal document. Rendered with proposal.DocumentData.
const signedProposalTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Proposal {{.Number}}</title>
<style>
  body { font-family: 'Helvetica Neue', Arial, sans-serif; color: #1a202c; margin: 0; padding: 32px; font-size: 13px; }
  .header { display: flex; justify-content: space-between; align-items: flex-start; border-bottom: 3px solid #2b6cb0; padding-bottom: 16px; margin-bottom: 24px; }
  .company-name { font-size: 22px; font-weight: 700; color: #2b6cb0; }
  .company-meta { font-size: 11px; color: #4a5568; margin-top: 4px; line-height: 1.5; }
  .doc-title { text-align: right; }
  .doc-title h1 { margin: 0; font-size: 18px; letter-spacing: 2px; color: #2d3748; }
  .doc-title .number { font-size: 13px; color: #4a5568; margin-top: 4px; }
  .accepted-badge { display: inline-block; margin-top: 8px; padding: 4px 12px; border: 2px solid #2f855a; color: #2f855a; font-weight: 700; font-size: 11px; letter-spacing: 1px; border-radius: 4px; }
  .customer { margin-bottom: 24px; }
  .customer .label { font-size: 10px; text-transform: uppercase; letter-spacing: 1px; color: #718096; margin-bottom: 4px; }
  .customer .name { font-weight: 600; font-size: 14px; }
  .customer .meta { color: #4a5568; line-height: 1.5; }
  .tier { margin-bottom: 8px; font-size: 14px; }
  .tier .tier-name { font-weight: 700; color: #2b6cb0; }
  table.lines { width: 100%; border-collapse: collapse; margin-bottom: 24px; }
  table.lines th { text-align: left; font-size: 10px; text-transform: uppercase; letter-spacing: 1px; color: #718096; border-bottom: 2px solid #e2e8f0; padding: 8px 6px; }
  table.lines th.num, table.lines td.num { text-align: right; }
  table.lines td { padding: 8px 6px; border-bottom: 1px solid #edf2f7; vertical-align: top; }
  table.lines .item-name { font-weight: 600; }
  table.lines .item-desc { color: #718096; font-size: 11px; margin-top: 2px; }
  .addon-tag { display: inline-block; font-size: 9px; text-transform: uppercase; letter-spacing: 1px; color: #805ad5; border: 1px solid #805ad5; border-radius: 3px; padding: 1px 5px; margin-left: 6px; }
  .totals { width: 280px; margin-left: auto; margin-bottom: 24px; }
  .totals .row { display: flex; justify-content: space-between; padding: 4px 6px; }
  .totals .row.grand { border-top: 2px solid #2d3748; font-weight: 700; font-size: 15px; padding-top: 8px; }
  .financing { background: #ebf8ff; border-radius: 6px; padding: 12px 16px; margin-bottom: 24px; }
  .financing .plan { font-weight: 600; }
  .financing .monthly { font-size: 16px; font-weight: 700; color: #2b6cb0; }
  .signature { border-top: 1px solid #e2e8f0; padding-top: 16px; display: flex; justify-content: space-between; align-items: flex-end; }
  .signature img { max-height: 60px; }
  .signature .meta { font-size: 11px; color: #4a5568; line-height: 1.6; }
  .terms { margin-top: 32px; font-size: 10px; color: #718096; line-height: 1.6; white-space: pre-wrap; }
</style>
</head>
<body>
  <div class="header">
    <div>
      {{if .Company.LogoURL}}<img src="{{safeURL .Company.LogoURL}}" alt="" style="max-height:48px; margin-bottom:8px;">{{end}}
      <div class="company-name">{{.Company.Name}}</div>
      <div class="company-meta">
        {{if .Company.Address}}{{.Company.Address}}<br>{{end}}
        {{if .Company.Phone}}{{.Company.Phone}}{{end}}{{if .Company.Email}} &middot; {{.Company.Email}}{{end}}
        {{if .Company.LicenseNumber}}<br>License {{.Company.LicenseNumber}}{{end}}
      </div>
    </div>
    <div class="doc-title">
      <h1>PROPOSAL</h1>
      <div class="number">{{.Number}}</div>
      <div class="accepted-badge">ACCEPTED</div>
    </div>
  </div>

  <div class="customer">
    <div class="label">Prepared for</div>
    <div class="name">{{.CustomerName}}</div>
    <div class="meta">
      {{if .CustomerAddress}}{{.CustomerAddress}}<br>{{end}}
      {{if .CustomerPhone}}{{.CustomerPhone}}{{end}}{{if .CustomerEmail}} &middot; {{.CustomerEmail}}{{end}}
    </div>
  </div>

  {{if .TierName}}<div class="tier">Selected option: <span class="tier-name">{{.TierName}}</span></div>{{end}}

  <table class="lines">
    <thead>
      <tr>
        <th>Item</th>
        <th class="num">Qty</th>
        <th class="num">Unit Price</th>
        <th class="num">Amount</th>
      </tr>
    </thead>
    <tbody>
      {{range .Lines}}
      <tr>
        <td>
          <div class="item-name">{{.Name}}{{if .IsAddon}}<span class="addon-tag">Add-on</span>{{end}}</div>
          {{if .Description}}<div class="item-desc">{{.Description}}</div>{{end}}
        </td>
        <td class="num">{{formatDecimal .Quantity 0}}</td>
        <td class="num">{{formatMoney .UnitPrice}}</td>
        <td class="num">{{formatMoney .LineTotal}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>

  <div class="totals">
    <div class="row"><span>Subtotal</span><span>{{formatMoney .Subtotal}}</span></div>
    {{if .TaxAmount}}<div class="row"><span>Tax</span><span>{{formatMoney .TaxAmount}}</span></div>{{end}}
    <div class="row grand"><span>Total</span><span>{{formatMoney .Total}}</span></div>
  </div>

  {{if .FinancingLabel}}
  <div class="financing">
    <div class="plan">{{.FinancingLabel}}</div>
    {{if .MonthlyPayment}}<div class="monthly">{{formatMoney .MonthlyPayment}}/mo</div>{{end}}
  </div>
  {{end}}

  <div class="signature">
    <div>
      {{if .SignatureData}}<img src="{{safeURL .SignatureData}}" alt="Signature">{{end}}
      <div class="meta">
        Signed by <strong>{{.SignerName}}</strong><br>
        {{formatDateTime .SignedAt}}
      </div>
    </div>
  </div>

  {{if .Company.ProposalTerms}}<div class="terms">{{.Company.ProposalTerms}}</div>{{end}}
</body>
</html>`
